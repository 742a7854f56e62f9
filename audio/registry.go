// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"path/filepath"
	"strings"
	"sync"
)

// Registry holds containers and codecs by name. It is safe for concurrent
// use; everything else in a pipeline run is owned by that run.
type Registry struct {
	containers []Container
	decoders   map[string]DecoderFactory
	encoders   map[string]EncoderFactory

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[string]DecoderFactory),
		encoders: make(map[string]EncoderFactory),
		mtx:      &sync.Mutex{},
	}
}

// RegisterContainer adds a container format. A container registered under an
// existing name replaces it.
func (r *Registry) RegisterContainer(c Container) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for i := range r.containers {
		if r.containers[i].Name == c.Name {
			r.containers[i] = c
			return
		}
	}
	r.containers = append(r.containers, c)
}

func (r *Registry) RegisterDecoder(codec string, f DecoderFactory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.decoders[codec] = f
}

func (r *Registry) RegisterEncoder(codec string, f EncoderFactory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.encoders[codec] = f
}

func (r *Registry) Decoder(codec string) (DecoderFactory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.decoders[codec]
	return f, ok
}

func (r *Registry) Encoder(codec string) (EncoderFactory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.encoders[codec]
	return f, ok
}

// ContainerForPath looks a container up by the extension of path.
func (r *Registry) ContainerForPath(path string) (Container, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return Container{}, false
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, c := range r.containers {
		for _, e := range c.Extensions {
			if e == ext {
				return c, true
			}
		}
	}
	return Container{}, false
}

// Containers returns a snapshot of the registered containers in
// registration order.
func (r *Registry) Containers() []Container {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]Container, len(r.containers))
	copy(out, r.containers)
	return out
}
