package eventchannel

import "sync"

// Token binds a release action to a scope. Releasing a token obtained from
// Channel.Scoped unsubscribes the associated handler, so deferring the
// release ties the subscription's lifetime to the enclosing scope:
//
//	t := c.Scoped(eventchannel.Subscribe(c, onTick))
//	defer t.Release()
//
// Release fires exactly once no matter how many times, or from how many
// goroutines, it is called. The zero Token and a nil *Token are inert.
type Token struct {
	once    sync.Once
	release func()
}

// NewToken creates a token holding an arbitrary release action.
func NewToken(release func()) *Token {
	return &Token{release: release}
}

// Release invokes the held action. Only the first call has any effect.
func (t *Token) Release() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		if t.release != nil {
			t.release()
		}
	})
}

// Close releases the token and always returns nil. It exists so a token can
// be used wherever an io.Closer is expected.
func (t *Token) Close() error {
	t.Release()
	return nil
}

// Scoped returns a token whose release unsubscribes tag from the channel.
// The tag is swept from every shape in both registry partitions, so tokens
// work for any subscription kind.
func (c *Channel) Scoped(tag Tag) *Token {
	return NewToken(func() {
		c.Unsubscribe(tag)
	})
}
