// Package script hosts a JavaScript runtime with the formatter exposed as the
// global TimezoneUtils object.
package script

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/jsutil"
	"github.com/hlop3z/tzstamp/internal/markup"
	"github.com/hlop3z/tzstamp/internal/timefmt"
)

// DefaultTimeout bounds a single Run.
const DefaultTimeout = 5 * time.Second

// Runtime is a goja VM bound to a refresher. It is not safe for concurrent use.
type Runtime struct {
	vm        *goja.Runtime
	refresher *markup.Refresher
	timeout   time.Duration
	logger    *slog.Logger
	out       io.Writer
	file      string
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout sets the execution limit per Run.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger routes console.warn and console.error to l.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOutput writes console.log lines to w instead of the logger.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.out = w
	}
}

// New creates a runtime with TimezoneUtils and console installed.
func New(refresher *markup.Refresher, opts ...Option) *Runtime {
	vm := goja.New()
	vm.SetMaxCallStackSize(500)
	vm.Set("eval", goja.Undefined())

	r := &Runtime{
		vm:        vm,
		refresher: refresher,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.bindConsole()
	r.bindUtils()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

func (r *Runtime) formatter() *timefmt.Formatter {
	return r.refresher.Formatter()
}

func (r *Runtime) bindConsole() {
	console := r.vm.NewObject()
	console.Set("log", func(call goja.FunctionCall) goja.Value {
		msg := jsutil.Join(call.Arguments)
		if r.out != nil {
			io.WriteString(r.out, msg+"\n")
		} else {
			r.logger.Info(msg, "source", "console")
		}
		return goja.Undefined()
	})
	console.Set("warn", func(call goja.FunctionCall) goja.Value {
		r.logger.Warn(jsutil.Join(call.Arguments), "source", "console")
		return goja.Undefined()
	})
	console.Set("error", func(call goja.FunctionCall) goja.Value {
		r.logger.Error(jsutil.Join(call.Arguments), "source", "console")
		return goja.Undefined()
	})
	r.vm.Set("console", console)
}

// bindUtils installs TimezoneUtils. Its functions never throw: bad input
// comes back as the raw value, the same as the document pass.
func (r *Runtime) bindUtils() {
	utils := r.vm.NewObject()

	utils.Set("convertToLocalTime", func(call goja.FunctionCall) goja.Value {
		raw := jsutil.ToTimestamp(jsutil.Arg(call, 0))
		format, _ := timefmt.ParseFormat(jsutil.ToGoString(jsutil.Arg(call, 1)))
		return r.vm.ToValue(r.formatter().Convert(raw, format))
	})

	utils.Set("getRelativeTime", func(call goja.FunctionCall) goja.Value {
		raw := jsutil.ToTimestamp(jsutil.Arg(call, 0))
		return r.vm.ToValue(r.formatter().Convert(raw, timefmt.Relative))
	})

	utils.Set("render", func(call goja.FunctionCall) goja.Value {
		raw := jsutil.ToTimestamp(jsutil.Arg(call, 0))
		format, _ := timefmt.ParseFormat(jsutil.ToGoString(jsutil.Arg(call, 1)))
		res := r.formatter().Render(raw, format)

		obj := r.vm.NewObject()
		obj.Set("text", res.Text)
		obj.Set("fallback", res.Fallback)
		if res.Err != nil {
			obj.Set("error", res.Err.Error())
			obj.Set("code", string(alerr.GetErrorCode(res.Err)))
		} else {
			obj.Set("error", goja.Null())
		}
		return obj
	})

	utils.Set("refreshAll", func(call goja.FunctionCall) goja.Value {
		src := jsutil.ToGoString(jsutil.Arg(call, 0))
		doc, err := markup.ParseString(src)
		if err != nil {
			r.logger.Warn("refreshAll: invalid markup", "error", err)
			return r.vm.ToValue(src)
		}
		r.refresher.RefreshAll(doc)
		return r.vm.ToValue(doc.String())
	})

	utils.Set("formats", timefmt.FormatNames())
	utils.Set("locale", r.formatter().Locale().Tag)

	r.vm.Set("TimezoneUtils", utils)
}

// Run executes code and returns the completion value as a string.
// Undefined results return "".
func (r *Runtime) Run(code string) (string, error) {
	timer := time.AfterFunc(r.timeout, func() {
		r.vm.Interrupt("execution timeout")
	})

	v, err := r.vm.RunString(code)
	timer.Stop()
	r.vm.ClearInterrupt()
	if err != nil {
		wrapped := jsutil.WrapJSError(err, alerr.ErrJSExecution)
		if wrapped.GetCode() == alerr.ErrJSTimeout {
			wrapped.With("timeout", r.timeout.String())
		}
		if r.file != "" {
			wrapped.WithFile(r.file, 0)
		}
		return "", wrapped
	}
	if jsutil.IsNullish(v) {
		return "", nil
	}
	return v.String(), nil
}

// RunFile reads and executes a script file.
func (r *Runtime) RunFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", alerr.Wrap(alerr.ErrJSExecution, err, "failed to read script").
			WithFile(path, 0)
	}

	r.file = path
	defer func() { r.file = "" }()

	code := strings.TrimPrefix(string(data), "\uFEFF")
	return r.Run(code)
}
