package automation_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoDriver struct {
	automation.Capabilities
	*automation.Settings[map[string]any]
}

func (d *echoDriver) Name() string { return "echo" }

func (d *echoDriver) Send(_ context.Context, data map[string]any, _ automation.Options) (any, error) {
	return data, nil
}

func (d *echoDriver) HandleWebhook(_ context.Context, req *automation.Request) (any, error) {
	return req.Payload(), nil
}

func (d *echoDriver) VerifyWebhook(*automation.Request) bool { return true }

func echoFactory(builds *atomic.Int32) automation.Factory {
	return func(cfg automation.Config, _ automation.Toolkit) (automation.Driver, error) {
		if builds != nil {
			builds.Add(1)
		}
		s, err := automation.NewSettings[map[string]any](cfg)
		if err != nil {
			return nil, err
		}
		return &echoDriver{Capabilities: automation.Capabilities{Inbound: true, Outbound: true}, Settings: s}, nil
	}
}

func newManager(configs map[string]automation.Config) *automation.Manager {
	return automation.NewManager(configs, "echo", automation.Toolkit{Logger: zerolog.Nop()})
}

func TestManager_Register(t *testing.T) {
	t.Run("success - first registration", func(t *testing.T) {
		m := newManager(nil)
		assert.NoError(t, m.Register("echo", echoFactory(nil)))
	})

	t.Run("error - duplicate name", func(t *testing.T) {
		m := newManager(nil)
		require.NoError(t, m.Register("echo", echoFactory(nil)))
		err := m.Register("echo", echoFactory(nil))
		assert.ErrorIs(t, err, automation.ErrDuplicateDriver)
	})
}

func TestManager_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("success - echo send is idempotent across resolutions", func(t *testing.T) {
		var builds atomic.Int32
		m := newManager(map[string]automation.Config{"echo": {"greeting": "hi"}})
		require.NoError(t, m.Register("echo", echoFactory(&builds)))

		d1, err := m.Resolve(ctx, "echo")
		require.NoError(t, err)
		out1, err := d1.Send(ctx, map[string]any{"a": 1}, nil)
		require.NoError(t, err)

		d2, err := m.Resolve(ctx, "echo")
		require.NoError(t, err)
		out2, err := d2.Send(ctx, map[string]any{"a": 1}, nil)
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"a": 1}, out1)
		assert.Equal(t, out1, out2)
		assert.Same(t, d1, d2)
		assert.Equal(t, d1.Config(), d2.Config())
		assert.Equal(t, int32(1), builds.Load())
	})

	t.Run("success - empty name resolves default", func(t *testing.T) {
		m := newManager(map[string]automation.Config{"echo": {}})
		require.NoError(t, m.Register("echo", echoFactory(nil)))
		d, err := m.Resolve(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "echo", d.Name())
	})

	t.Run("success - driver key selects the factory", func(t *testing.T) {
		m := newManager(map[string]automation.Config{"mirror": {"driver": "echo"}})
		require.NoError(t, m.Register("echo", echoFactory(nil)))
		d, err := m.Resolve(ctx, "mirror")
		require.NoError(t, err)
		assert.Equal(t, "echo", d.Name())
	})

	t.Run("error - unconfigured name", func(t *testing.T) {
		m := newManager(nil)
		require.NoError(t, m.Register("echo", echoFactory(nil)))
		_, err := m.Resolve(ctx, "echo")
		assert.ErrorIs(t, err, automation.ErrDriverNotFound)
		assert.False(t, m.HasDriver("echo"))
	})

	t.Run("error - configured without factory", func(t *testing.T) {
		m := newManager(map[string]automation.Config{"ghost": {}})
		_, err := m.Resolve(ctx, "ghost")
		var nf *automation.DriverNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "driver ghost not found", nf.Error())
		assert.True(t, m.HasDriver("ghost"))
	})

	t.Run("error - factory failure is not cached", func(t *testing.T) {
		var calls atomic.Int32
		m := newManager(map[string]automation.Config{"flaky": {}})
		m.Extend("flaky", func(automation.Config, automation.Toolkit) (automation.Driver, error) {
			calls.Add(1)
			return nil, errors.New("no credentials")
		})
		_, err := m.Resolve(ctx, "flaky")
		require.ErrorContains(t, err, "no credentials")
		_, err = m.Resolve(ctx, "flaky")
		require.Error(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("success - overrides produce a distinct instance", func(t *testing.T) {
		m := newManager(map[string]automation.Config{"echo": {"channel": "#general"}})
		require.NoError(t, m.Register("echo", echoFactory(nil)))
		base, err := m.Resolve(ctx, "echo")
		require.NoError(t, err)
		custom, err := m.ResolveWith(ctx, "echo", automation.Config{"channel": "#ops"})
		require.NoError(t, err)
		assert.NotSame(t, base, custom)
		assert.Equal(t, "#ops", custom.Config()["channel"])
		assert.Equal(t, "#general", base.Config()["channel"])
	})
}

func TestManager_ConcurrentResolveBuildsOnce(t *testing.T) {
	var builds atomic.Int32
	m := newManager(map[string]automation.Config{"echo": {}})
	require.NoError(t, m.Register("echo", echoFactory(&builds)))

	var wg sync.WaitGroup
	drivers := make([]automation.Driver, 64)
	for i := range drivers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := m.Resolve(context.Background(), "echo")
			assert.NoError(t, err)
			drivers[i] = d
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, d := range drivers {
		assert.Same(t, drivers[0], d)
	}
}

func TestManager_Extend(t *testing.T) {
	ctx := context.Background()
	var first, second atomic.Int32
	m := newManager(map[string]automation.Config{"echo": {}})
	require.NoError(t, m.Register("echo", echoFactory(&first)))

	_, err := m.Resolve(ctx, "echo")
	require.NoError(t, err)

	m.Extend("echo", echoFactory(&second))
	_, err = m.Resolve(ctx, "echo")
	require.NoError(t, err)

	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestManager_Introspection(t *testing.T) {
	m := newManager(map[string]automation.Config{"slack": {}, "echo": {}})
	require.NoError(t, m.Register("echo", echoFactory(nil)))

	assert.Equal(t, []string{"echo", "slack"}, m.Drivers())
	assert.Equal(t, "echo", m.DefaultDriver())
	assert.True(t, m.HasDriver("slack"))
	assert.False(t, m.HasDriver("discord"))

	m.Configure("discord", automation.Config{"driver": "echo"})
	assert.True(t, m.HasDriver("discord"))

	desc, err := m.Describe(context.Background(), "discord")
	require.NoError(t, err)
	assert.Equal(t, "discord", desc.Name)
	assert.Equal(t, "echo", desc.Driver)
	assert.True(t, desc.Inbound)
	assert.True(t, desc.Outbound)
}
