package debugplot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sudorandom/debug-plotter/pkg/plotdata"
)

func TestEnabledByDefault(t *testing.T) {
	if !buildEnabled {
		t.Skip("built with noplot")
	}
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"1", true},
		{"yes", true},
		{"0", false},
		{"false", false},
		{" OFF ", false},
		{"no", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(EnvVar, tt.value)
			assert.Equal(t, tt.want, enabledByDefault())
		})
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, plotdata.Identity{Kind: plotdata.KindCaption, Name: "Foo"},
		resolve(Config{Caption: "Foo", Path: "foo.png"}, "main.go:1"))
	assert.Equal(t, plotdata.Identity{Kind: plotdata.KindPath, Name: "foo.png"},
		resolve(Config{Path: "foo.png"}, "main.go:1"))
	assert.Equal(t, plotdata.Identity{Kind: plotdata.KindSite, Name: "main.go:1"},
		resolve(Config{}, "main.go:1"))
}

func TestSampleHelpers(t *testing.T) {
	s := V("count", uint8(3))
	assert.Nil(t, s.X)
	assert.Equal(t, 3.0, s.Y)

	xy := XY("sin_x", 2, float32(0.5)).As("sin(x)")
	if assert.NotNil(t, xy.X) {
		assert.Equal(t, 2.0, *xy.X)
	}
	assert.Equal(t, 0.5, xy.Y)
	assert.Equal(t, "sin(x)", xy.Label)
	assert.Equal(t, "sin_x", xy.Name)
}
