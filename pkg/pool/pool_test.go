package pool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolResetsAndCounts(t *testing.T) {
	p := New(
		func() []string { return make([]string, 0, 4) },
		func(s []string) {
			for i := range s {
				s[i] = ""
			}
		},
	)

	s := p.Get()
	s = append(s, "email")
	allocated, inUse, _, misses := p.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(1), inUse)
	assert.Equal(t, int64(1), misses)

	p.Put(s)
	_, inUse, _, _ = p.Stats()
	assert.Equal(t, int64(0), inUse)
	assert.Equal(t, "", s[0])
}

func TestBuffers(t *testing.T) {
	buf := GetBuffer()
	assert.Equal(t, 0, buf.Len())
	buf.WriteString("payload")
	PutBuffer(buf)

	again := GetBuffer()
	assert.Equal(t, 0, again.Len())
	PutBuffer(again)

	big := bytes.NewBuffer(make([]byte, 0, MaxPooledBuffer+1))
	PutBuffer(big)
	PutBuffer(nil)
}

func TestPoolConcurrentUse(t *testing.T) {
	p := New(func() *bytes.Buffer { return new(bytes.Buffer) }, func(b *bytes.Buffer) { b.Reset() })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := p.Get()
				b.WriteString("x")
				p.Put(b)
			}
		}()
	}
	wg.Wait()

	allocated, inUse, _, _ := p.Stats()
	assert.Equal(t, int64(0), inUse)
	assert.GreaterOrEqual(t, allocated, int64(1))
}
