package activation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/trackmcp/internal/config"
	"git.home.luguber.info/inful/trackmcp/internal/launch"
)

type noopLauncher struct{}

func (noopLauncher) Launch(context.Context, launch.Options) (*launch.LaunchInfo, error) {
	return &launch.LaunchInfo{LocalURL: "http://127.0.0.1:7860"}, nil
}

func TestResolveUnknownComponent(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("nope")
	assert.Error(t, err)
}

func TestHookTriggersOnTargetResolve(t *testing.T) {
	t.Setenv(config.EnvEnableMCP, "true")
	r := NewRegistry()
	hook := NewHook(r, launch.NewController(nil), nil)
	hook.Install()
	defer hook.Uninstall()

	reg := r.Register(TargetComponent, noopLauncher{})
	assert.Nil(t, reg.Original(), "registration must be untouched before resolve")

	got, err := r.Resolve(TargetComponent)
	require.NoError(t, err)
	assert.Same(t, reg, got)
	assert.NotNil(t, reg.Original(), "resolve of target must trigger augmentation")
}

func TestHookIgnoresOtherComponents(t *testing.T) {
	t.Setenv(config.EnvEnableMCP, "true")
	r := NewRegistry()
	hook := NewHook(r, launch.NewController(nil), nil)
	hook.Install()
	defer hook.Uninstall()

	target := r.Register(TargetComponent, noopLauncher{})
	other := r.Register("dashboard", noopLauncher{})

	_, err := r.Resolve("dashboard")
	require.NoError(t, err)
	assert.Nil(t, target.Original())
	assert.Nil(t, other.Original())
}

func TestHookTriggersOnSubComponentOnceTargetPresent(t *testing.T) {
	t.Setenv(config.EnvEnableMCP, "true")
	r := NewRegistry()
	hook := NewHook(r, launch.NewController(nil), nil)
	hook.Install()
	defer hook.Uninstall()

	// Sub-component resolves while the target is absent: no trigger, and
	// the resolve error is the caller's to see.
	r.Register(TargetComponent+".ui", noopLauncher{})
	_, err := r.Resolve(TargetComponent + ".deploy")
	assert.Error(t, err)

	target := r.Register(TargetComponent, noopLauncher{})
	_, err = r.Resolve(TargetComponent + ".ui")
	require.NoError(t, err)
	assert.NotNil(t, target.Original())
}

func TestInstallTwiceDoesNotChain(t *testing.T) {
	r := NewRegistry()
	hook := NewHook(r, launch.NewController(nil), nil)
	hook.Install()
	first := hook.original
	hook.Install()
	assert.NotNil(t, first)
	// A second install must not capture the wrapped primitive as original.
	hook.Uninstall()
	r.Register("x", noopLauncher{})
	_, err := r.Resolve("x")
	assert.NoError(t, err)
}

func TestUninstallRestoresResolve(t *testing.T) {
	t.Setenv(config.EnvEnableMCP, "true")
	r := NewRegistry()
	hook := NewHook(r, launch.NewController(nil), nil)
	hook.Install()
	hook.Uninstall()

	reg := r.Register(TargetComponent, noopLauncher{})
	_, err := r.Resolve(TargetComponent)
	require.NoError(t, err)
	assert.Nil(t, reg.Original(), "uninstalled hook must not trigger")
}

func TestSetupAppliesImmediatelyWhenRegistered(t *testing.T) {
	t.Setenv(config.EnvEnableMCP, "true")
	r := NewRegistry()
	reg := r.Register(TargetComponent, noopLauncher{})

	hook := Setup(r, launch.NewController(nil), nil)
	assert.Nil(t, hook, "no hook needed when target already present")
	assert.NotNil(t, reg.Original())
}

func TestSetupDefersWhenAbsent(t *testing.T) {
	t.Setenv(config.EnvEnableMCP, "true")
	r := NewRegistry()

	hook := Setup(r, launch.NewController(nil), nil)
	require.NotNil(t, hook)
	defer hook.Uninstall()

	reg := r.Register(TargetComponent, noopLauncher{})
	_, err := r.Resolve(TargetComponent)
	require.NoError(t, err)
	assert.NotNil(t, reg.Original())
}
