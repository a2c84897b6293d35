// Package digest fingerprints the timestamp holders of a document with a
// merkle tree, so a rendered output can be checked against its source without
// diffing the surrounding markup.
package digest

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/markup"
)

// Digest is the merkle root over a document's holders plus the per-holder leaves.
type Digest struct {
	Root   string   // hex root hash
	Leaves []string // hex leaf hashes in document order
}

// leafSeparator joins a holder's raw value and selector in its leaf. NUL never
// appears in attribute values, so distinct pairs never share a leaf.
const leafSeparator = "\x00"

// holderContent implements merkletree.Content for one holder.
type holderContent struct {
	hash string
}

func (h holderContent) CalculateHash() ([]byte, error) {
	sum := sha256.Sum256([]byte(h.hash))
	return sum[:], nil
}

func (h holderContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(holderContent)
	if !ok {
		return false, nil
	}
	return h.hash == o.hash, nil
}

// Compute builds the digest of every holder's raw timestamp and format selector.
// Text content and titles are ignored, so a source and its rendered output
// share a digest.
func Compute(doc *markup.Document, attrs markup.Attrs) (*Digest, error) {
	attrs = attrs.WithDefaults()
	nodes := attrs.Holders(doc.Root())
	if len(nodes) == 0 {
		return &Digest{Root: emptyHash()}, nil
	}

	d := &Digest{Leaves: make([]string, 0, len(nodes))}
	contents := make([]merkletree.Content, 0, len(nodes))
	for _, n := range nodes {
		raw, _ := markup.Attr(n, attrs.Timestamp)
		sel, _ := markup.Attr(n, attrs.Format)
		leaf := hashString(raw + leafSeparator + sel)
		d.Leaves = append(d.Leaves, leaf)
		contents = append(contents, holderContent{hash: leaf})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to build holder merkle tree")
	}
	d.Root = hex.EncodeToString(tree.MerkleRoot())
	return d, nil
}

// Diff is the difference between two digests.
type Diff struct {
	Changed bool
	Added   int // leaves in the new digest only
	Removed int // leaves in the old digest only
}

// Compare reports how next differs from prev. A nil prev counts every leaf as added.
func Compare(prev, next *Digest) Diff {
	if prev == nil {
		if next == nil {
			return Diff{}
		}
		return Diff{Changed: true, Added: len(next.Leaves)}
	}
	if next == nil {
		return Diff{Changed: true, Removed: len(prev.Leaves)}
	}
	if prev.Root == next.Root {
		return Diff{}
	}

	counts := make(map[string]int, len(prev.Leaves))
	for _, l := range prev.Leaves {
		counts[l]++
	}
	diff := Diff{Changed: true}
	for _, l := range next.Leaves {
		if counts[l] > 0 {
			counts[l]--
			continue
		}
		diff.Added++
	}
	for _, c := range counts {
		diff.Removed += c
	}
	return diff
}

// Short returns the first 12 characters of a hex hash.
func Short(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func emptyHash() string {
	return hashString("")
}
