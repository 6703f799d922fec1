package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/openfluke/webgpu/wgpu"
)

// Context holds the single WebGPU context for the process
type Context struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	once     sync.Once
	initErr  error
}

var ctx Context

// GetContext returns the singleton GPU context, initializing it if necessary.
// A failed initialization is remembered and returned on every later call.
func GetContext() (*Context, error) {
	ctx.once.Do(func() {
		ctx.Instance = wgpu.CreateInstance(nil)
		if ctx.Instance == nil {
			ctx.initErr = fmt.Errorf("failed to create WebGPU instance")
			return
		}

		tryInit := func(opts *wgpu.RequestAdapterOptions) error {
			if ctx.Adapter != nil {
				return nil
			}
			var err error
			ctx.Adapter, err = ctx.Instance.RequestAdapter(opts)
			return err
		}

		err := tryInit(&wgpu.RequestAdapterOptions{
			PowerPreference: wgpu.PowerPreferenceHighPerformance,
		})
		if err != nil && ctx.Adapter == nil {
			Logger().Warn("high performance adapter failed, falling back", slog.Any("err", err))
			err = tryInit(&wgpu.RequestAdapterOptions{
				PowerPreference: wgpu.PowerPreferenceLowPower,
			})
		}
		if err != nil && ctx.Adapter == nil {
			Logger().Warn("low power adapter failed, trying default", slog.Any("err", err))
			err = tryInit(nil)
		}
		if ctx.Adapter == nil {
			ctx.initErr = fmt.Errorf("all adapter attempts failed: %v", err)
			return
		}

		info := ctx.Adapter.GetInfo()
		Logger().Info("using GPU adapter", slog.String("name", info.Name), slog.String("vendor", info.VendorName))

		ctx.Device, err = ctx.Adapter.RequestDevice(nil)
		if err != nil {
			ctx.initErr = err
			return
		}
		ctx.Queue = ctx.Device.GetQueue()
	})

	if ctx.initErr != nil {
		return nil, ctx.initErr
	}
	if ctx.Device == nil || ctx.Queue == nil {
		return nil, fmt.Errorf("WebGPU device or queue not initialized")
	}
	return &ctx, nil
}
