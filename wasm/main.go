//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"syscall/js"

	"github.com/openfluke/convfield/nn"
)

// session is the single editor session driven from JavaScript
var session = nn.NewSession(nil)

// stateJSON serializes the current snapshot
func stateJSON() interface{} {
	data, err := json.Marshal(session.Snapshot())
	if err != nil {
		return errorJSON(fmt.Errorf("failed to marshal state: %w", err))
	}
	return string(data)
}

func errorJSON(err error) interface{} {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(data)
}

// mutation wraps a session edit: arguments are checked, fn runs and the new
// state (or an error object) is returned as JSON.
func mutation(name string, minArgs int, fn func(args []js.Value) error) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) < minArgs {
			return errorJSON(fmt.Errorf("%s: expected %d arguments, got %d", name, minArgs, len(args)))
		}
		if err := fn(args); err != nil {
			return errorJSON(fmt.Errorf("%s: %w", name, err))
		}
		return stateJSON()
	})
}

// layerSpecArg reads an optional JSON layer definition, defaulting to the
// editor's new-layer spec.
func layerSpecArg(args []js.Value, i int) (nn.LayerSpec, error) {
	spec := nn.DefaultLayerSpec()
	if len(args) <= i || args[i].IsUndefined() || args[i].IsNull() || args[i].String() == "" {
		return spec, nil
	}

	var def nn.LayerDefinition
	if err := json.Unmarshal([]byte(args[i].String()), &def); err != nil {
		return spec, fmt.Errorf("invalid layer JSON: %w", err)
	}
	net, err := nn.FromConfig(nn.NetworkConfig{Layers: []nn.LayerDefinition{def}})
	if err != nil {
		return spec, err
	}
	return net.Layer(0)
}

func main() {
	nn.SetLogger(slog.New(slog.NewTextHandler(consoleWriter{}, &slog.HandlerOptions{Level: slog.LevelInfo})))

	api := map[string]js.Func{
		"setInputDim": mutation("setInputDim", 1, func(args []js.Value) error {
			session.SetInputDim(args[0].Int())
			return nil
		}),
		"insertLayer": mutation("insertLayer", 1, func(args []js.Value) error {
			spec, err := layerSpecArg(args, 1)
			if err != nil {
				return err
			}
			_, err = session.InsertLayer(args[0].Int(), spec)
			return err
		}),
		"removeLayer": mutation("removeLayer", 1, func(args []js.Value) error {
			return session.RemoveLayer(args[0].Int())
		}),
		"updateLayerParam": mutation("updateLayerParam", 3, func(args []js.Value) error {
			field, err := nn.ParseParamField(args[1].String())
			if err != nil {
				return err
			}
			return session.UpdateLayerParam(args[0].Int(), field, args[2].Int())
		}),
		"renameLayer": mutation("renameLayer", 2, func(args []js.Value) error {
			return session.RenameLayer(args[0].Int(), args[1].String())
		}),
		"select": mutation("select", 2, func(args []js.Value) error {
			shift := len(args) > 2 && args[2].Truthy()
			want := nn.Select(args[0].Int(), args[1].Int(), nn.ModeFromModifier(shift))
			if got := session.Select(want); !got.Active {
				return fmt.Errorf("%s is out of range", want)
			}
			return nil
		}),
		"clearSelection": mutation("clearSelection", 0, func(args []js.Value) error {
			session.ClearSelection()
			return nil
		}),
		"reset": mutation("reset", 0, func(args []js.Value) error {
			session.Reset()
			return nil
		}),
		"useGPU": mutation("useGPU", 1, func(args []js.Value) error {
			return session.UseGPU(args[0].Truthy())
		}),
		"loadFragment": mutation("loadFragment", 1, func(args []js.Value) error {
			// A broken fragment still leaves a usable network behind
			net, err := nn.DecodeFragmentOrDefault(args[0].String())
			session.Load(net)
			return err
		}),
		"loadConfig": mutation("loadConfig", 1, func(args []js.Value) error {
			net, err := nn.UnmarshalNetworkJSON([]byte(args[0].String()))
			if err != nil {
				return err
			}
			session.Load(net)
			return nil
		}),
	}

	api["state"] = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return stateJSON()
	})
	api["saveFragment"] = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return nn.EncodeFragment(session.Network())
	})
	api["saveConfig"] = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		data, err := nn.MarshalNetworkJSON(session.Network(), "")
		if err != nil {
			return errorJSON(err)
		}
		return string(data)
	})

	obj := js.Global().Get("Object").New()
	names := make([]string, 0, len(api))
	for name, fn := range api {
		obj.Set(name, fn)
		names = append(names, name)
	}
	js.Global().Set("convfield", obj)

	// Restore a shared network from the page URL
	if hash := js.Global().Get("location").Get("hash"); hash.Truthy() {
		net, err := nn.DecodeFragmentOrDefault(hash.String())
		if err != nil {
			nn.Logger().Warn("ignoring malformed location hash", slog.Any("err", err))
		}
		session.Load(net)
	}

	fmt.Printf("convfield WASM module ready: %s\n", strings.Join(names, ", "))
	select {}
}

// consoleWriter forwards log lines to the browser console
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
