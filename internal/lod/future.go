package lod

// Future is the eventual result of a tier request.
//
// A Future is settled exactly once, on the render goroutine. Callbacks
// registered with Then run on the render goroutine as well: immediately when
// the future is already settled, otherwise in registration order when it
// settles.
type Future struct {
	tier      Tier
	done      chan struct{}
	tex       *Texture
	err       error
	settled   bool
	callbacks []func(*Texture, error)
}

func newFuture(tier Tier) *Future {
	return &Future{tier: tier, done: make(chan struct{})}
}

func resolved(tex *Texture) *Future {
	f := newFuture(tex.Tier)
	f.resolve(tex)
	return f
}

func rejected(tier Tier, err error) *Future {
	f := newFuture(tier)
	f.reject(err)
	return f
}

// Tier returns the requested tier.
func (f *Future) Tier() Tier {
	return f.tier
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has a result.
func (f *Future) Settled() bool {
	return f.settled
}

// Result returns the texture or error. Both are nil while pending.
func (f *Future) Result() (*Texture, error) {
	return f.tex, f.err
}

// Then registers fn to receive the result.
func (f *Future) Then(fn func(*Texture, error)) {
	if f.settled {
		fn(f.tex, f.err)
		return
	}
	f.callbacks = append(f.callbacks, fn)
}

func (f *Future) resolve(tex *Texture) {
	f.settle(tex, nil)
}

func (f *Future) reject(err error) {
	f.settle(nil, err)
}

func (f *Future) settle(tex *Texture, err error) {
	if f.settled {
		return
	}
	f.tex, f.err, f.settled = tex, err, true
	close(f.done)

	callbacks := f.callbacks
	f.callbacks = nil
	for _, fn := range callbacks {
		fn(tex, err)
	}
}
