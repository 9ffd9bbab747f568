//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/dragpoint/geodrag/internal/construction"
	"github.com/dragpoint/geodrag/internal/session"
)

var sess *session.Session

func main() {
	def, _ := construction.Builtin(construction.DefaultBuiltin)
	var err error
	sess, err = session.New(def, nil, nil)
	if err != nil {
		panic(err)
	}

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → session) ---
	api.Set("load", js.FuncOf(loadConstruction))
	api.Set("loadBuiltin", js.FuncOf(loadBuiltin))
	api.Set("press", js.FuncOf(press))
	api.Set("motion", js.FuncOf(motion))
	api.Set("release", js.FuncOf(release))
	api.Set("moveTo", js.FuncOf(moveTo))
	api.Set("reset", js.FuncOf(reset))
	api.Set("setHitRadius", js.FuncOf(setHitRadius))

	// --- Queries (frontend ← session) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getScene", js.FuncOf(getScene))
	api.Set("getFrame", js.FuncOf(getFrame))
	api.Set("listBuiltins", js.FuncOf(listBuiltins))

	js.Global().Set("geodrag", api)
	js.Global().Set("geodragWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

// --- Command Handlers ---

func loadConstruction(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("construction text")
	}
	def, err := construction.Parse([]byte(args[0].String()))
	if err != nil {
		return result(err)
	}
	return result(sess.Load(def))
}

func loadBuiltin(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("construction id")
	}
	def, ok := construction.Builtin(args[0].String())
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": "unknown construction " + args[0].String()})
	}
	return result(sess.Load(def))
}

func press(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	inside := true
	if len(args) > 2 {
		inside = args[2].Truthy()
	}
	return js.ValueOf(sess.Press(args[0].Float(), args[1].Float(), inside))
}

func motion(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	inside := true
	if len(args) > 2 {
		inside = args[2].Truthy()
	}
	return js.ValueOf(sess.Motion(args[0].Float(), args[1].Float(), inside))
}

func release(this js.Value, args []js.Value) interface{} {
	var x, y float64
	if len(args) >= 2 {
		x, y = args[0].Float(), args[1].Float()
	}
	sess.Release(x, y)
	return nil
}

func moveTo(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("coordinates")
	}
	return result(sess.MoveTo(args[0].Float(), args[1].Float()))
}

func reset(this js.Value, args []js.Value) interface{} {
	return result(sess.Reset())
}

// setHitRadius takes a pixel radius and the current pixels per world unit.
func setHitRadius(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || args[1].Float() <= 0 {
		return missing("radius and scale")
	}
	return result(sess.SetHitRadius(args[0].Float() / args[1].Float()))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(sess.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(sess.HitTest(args[0].Float(), args[1].Float()))
}

func getScene(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(sess.SceneJSON())
}

func getFrame(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(sess.Frame())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func listBuiltins(this js.Value, args []js.Value) interface{} {
	defs := construction.Builtins()
	out := make([]interface{}, 0, len(defs))
	for _, d := range defs {
		out = append(out, map[string]interface{}{"id": d.ID, "name": d.Name})
	}
	return js.ValueOf(out)
}
