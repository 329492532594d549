package framekit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestProperties(t *testing.T) {

	props := NewProperties()
	props.Get("name").Set("cube")
	props.Get("speed").Set(2.5)
	props.Get("lives").Set(3)
	props.Get("offset").Set(mgl64.Vec3{1, 2, 3})

	assert.True(t, props.Has("name", "speed"))
	assert.False(t, props.Has("name", "missing"))
	assert.Equal(t, []string{"lives", "name", "offset", "speed"}, props.Names())

	name, ok := props.Get("name").Text()
	assert.True(t, ok)
	assert.Equal(t, "cube", name)

	speed, ok := props.Get("speed").Float64()
	assert.True(t, ok)
	assert.Equal(t, 2.5, speed)

	lives, ok := props.Get("lives").Float64()
	assert.True(t, ok, "ints read as floats")
	assert.Equal(t, 3.0, lives)

	_, ok = props.Get("name").Float64()
	assert.False(t, ok)

	offset, ok := props.Get("offset").Vector()
	assert.True(t, ok)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, offset)

	clone := props.Clone()
	clone.Get("name").Set("sphere")
	props.Remove("speed")
	assert.Equal(t, 3, props.Count())
	assert.Equal(t, 4, clone.Count())
	assert.Equal(t, "cube", props.Get("name").Value, "clones don't share Property values")

}
