package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	name string
}

func TestPoolResetsOnPut(t *testing.T) {
	created := 0
	p := NewPool(func() *item {
		created++
		return &item{}
	}, func(i *item) { i.name = "" })
	assert.Zero(t, created)

	it := p.Get()
	it.name = "dirty"
	p.Put(it)

	// sync.Pool may drop values, but whatever comes back must be clean
	for i := 0; i < 4; i++ {
		assert.Empty(t, p.Get().name)
	}
}
