package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
)

func TestNames_Sorted(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"cornell", "default", "mesh", "spheres"}, names)
}

func TestByName(t *testing.T) {
	for _, info := range Builtins() {
		t.Run(info.ID, func(t *testing.T) {
			s, err := ByName(info.ID)
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.Equal(t, info.ID, s.Name())
			assert.NotEmpty(t, info.DisplayName)
			assert.NotEmpty(t, info.Description)
			assert.Positive(t, s.PrimitiveCount())

			// Every built-in scene is lit somehow
			assert.True(t, len(s.Lights()) > 0 || len(s.AreaLights()) > 0)

			// The camera sees some geometry
			cam := s.Camera()
			hits := 0
			for i := 0; i < 8; i++ {
				for j := 0; j < 8; j++ {
					ray := cam.GetRay((float64(i)+0.5)*float64(cam.Width())/8, (float64(j)+0.5)*float64(cam.Height())/8)
					if _, ok := s.Intersect(ray); ok {
						hits++
					}
				}
			}
			assert.Positive(t, hits)
		})
	}
}

func TestByName_CaseInsensitive(t *testing.T) {
	s, err := ByName("  Cornell ")
	require.NoError(t, err)
	assert.Equal(t, "cornell", s.Name())
}

func TestByName_Unknown(t *testing.T) {
	_, err := ByName("dragon")
	assert.ErrorIs(t, err, ErrUnknownScene)
	assert.Contains(t, err.Error(), "cornell")
}

func TestCornellScene_Light(t *testing.T) {
	s := NewCornellScene()
	assert.Empty(t, s.Lights())
	require.Len(t, s.AreaLights(), 2)
	for _, light := range s.AreaLights() {
		assert.Equal(t, core.Gray(15), light.Emission)
		// The light quad faces down into the box
		assert.Equal(t, geometry.KindTriangle, light.Kind)
		assert.Negative(t, light.Triangle.Normal().Y)
	}
}
