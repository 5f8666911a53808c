package scripting

import (
	"context"
	"errors"

	"github.com/dop251/goja"
)

var ErrNoSuchPage = errors.New("no such page")

type GojaEngine struct {
	vm *goja.Runtime
}

func NewEngine() *GojaEngine {
	vm := goja.New()
	return &GojaEngine{vm: vm}
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// RegisterDocument defines `doc` with a pageCount property and getPage(n),
// which returns {number, width, height, rotation, landscape} or null.
func (e *GojaEngine) RegisterDocument(doc Document) error {
	docObj := e.vm.NewObject()
	if err := docObj.Set("pageCount", doc.PageCount()); err != nil {
		return err
	}
	if err := e.vm.Set("doc", docObj); err != nil {
		return err
	}

	return e.vm.Set("getPage", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		info, err := doc.Page(int(call.Arguments[0].ToInteger()))
		if err != nil {
			return goja.Null()
		}
		obj := e.vm.NewObject()
		obj.Set("number", info.Number)
		obj.Set("width", info.Width)
		obj.Set("height", info.Height)
		obj.Set("rotation", info.Rotation)
		obj.Set("landscape", info.Landscape())
		return obj
	})
}
