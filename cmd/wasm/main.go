//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/inamate/render-go/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.New(nil)

	renderEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	renderEngine.Set("loadDocument", js.FuncOf(loadDocument))
	renderEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	renderEngine.Set("setPage", js.FuncOf(setPage))
	renderEngine.Set("setZoom", js.FuncOf(setZoom))
	renderEngine.Set("setSelection", js.FuncOf(setSelection))
	renderEngine.Set("invalidate", js.FuncOf(invalidate))

	// --- Queries (frontend ← engine) ---
	renderEngine.Set("render", js.FuncOf(render))
	renderEngine.Set("hitTest", js.FuncOf(hitTest))
	renderEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	renderEngine.Set("getDocument", js.FuncOf(getDocument))
	renderEngine.Set("getPage", js.FuncOf(getPage))
	renderEngine.Set("getSelection", js.FuncOf(getSelection))

	js.Global().Set("renderEngine", renderEngine)
	js.Global().Set("renderEngineReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorValue(err error) js.Value {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func okValue() js.Value {
	return js.ValueOf(map[string]any{"ok": true})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing document JSON"})
	}
	if err := eng.LoadDocument([]byte(args[0].String())); err != nil {
		return errorValue(err)
	}
	return okValue()
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	projectID := "doc_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		projectID = args[0].String()
	}
	eng.LoadSampleDocument(projectID)
	return okValue()
}

func setPage(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing page id"})
	}
	if err := eng.SetPage(args[0].String()); err != nil {
		return errorValue(err)
	}
	return okValue()
}

func setZoom(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	eng.SetZoom(args[0].Float())
	return nil
}

func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func invalidate(this js.Value, args []js.Value) any {
	eng.Invalidate()
	return nil
}

// --- Query Handlers ---

// render returns the draw commands of the current page as a JSON string, or
// an error object.
func render(this js.Value, args []js.Value) any {
	cmds, err := eng.RenderCommands()
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(cmds))
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	if len(args) > 0 && args[0].Type() == js.TypeObject {
		setSelection(this, args)
	}
	b := eng.SelectionBounds()
	return js.ValueOf(map[string]any{
		"x":      b.X,
		"y":      b.Y,
		"width":  b.Width,
		"height": b.Height,
	})
}

func getDocument(this js.Value, args []js.Value) any {
	doc := eng.Document()
	if doc == nil {
		return js.ValueOf("null")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(data))
}

func getPage(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.PageID())
}

func getSelection(this js.Value, args []js.Value) any {
	data, _ := json.Marshal(eng.Selection())
	return js.ValueOf(string(data))
}
