// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cbor

import "fmt"

// ContainerType is the kind of a Builder frame.
type ContainerType uint8

// Container types
const (
	Root ContainerType = iota
	ArrayContainer
	MapContainer
)

func (c ContainerType) String() string {
	switch c {
	case Root:
		return "root"
	case ArrayContainer:
		return "array"
	case MapContainer:
		return "map"
	default:
		return fmt.Sprintf("ContainerType(%d)", uint8(c))
	}
}

type frame struct {
	kind   ContainerType
	buf    []byte
	count  uint64
	tagged bool // a tag head awaits its content
}

// Builder produces canonical CBOR incrementally without building a Value tree.
// Items are pushed into the innermost open container. Since the number of
// items of a container is not known until it is closed, each container
// collects its encoded items in its own buffer, which is copied into the
// enclosing container by Leave.
//
// Builder does not sort map keys; pairs are written in the order they are
// pushed.
//
// Leave on the root frame (ErrEmptyStack) and Enter(Root)
// (ErrInvalidContainerType) leave the Builder usable. Any other error, or a
// call to Abort, releases all buffers and is returned by every later call.
type Builder struct {
	frames []frame
	err    error
}

// NewBuilder returns a Builder with an empty root frame.
func NewBuilder() *Builder {
	return &Builder{frames: []frame{{kind: Root}}}
}

// Depth returns the number of open frames, including the root.
func (b *Builder) Depth() int { return len(b.frames) }

func (b *Builder) top() *frame { return &b.frames[len(b.frames)-1] }

// unwind releases every frame and makes err sticky.
func (b *Builder) unwind(err error) error {
	clear(b.frames)
	b.frames = nil
	b.err = err
	return err
}

// push appends one complete item to the current frame.
func (b *Builder) push(appendItem func([]byte) []byte) error {
	if b.err != nil {
		return b.err
	}
	f := b.top()
	f.buf = appendItem(f.buf)
	f.count++
	f.tagged = false
	return nil
}

// Abort invalidates the Builder, releasing its buffers. Every later call
// returns err, unless the Builder had already failed, in which case the first
// error is kept. It lets a caller that fails midway through an item leave no
// half-built container behind.
func (b *Builder) Abort(err error) {
	if b.err != nil {
		return
	}
	if err == nil {
		err = errAborted
	}
	b.unwind(err)
}

// PushInt appends a signed integer.
func (b *Builder) PushInt(i int64) error { return b.PushInteger(NewInt(i)) }

// PushUint appends an unsigned integer.
func (b *Builder) PushUint(u uint64) error { return b.PushInteger(NewUint(u)) }

// PushInteger appends an integer of the full CBOR range.
func (b *Builder) PushInteger(i Int) error {
	return b.push(func(dst []byte) []byte { return appendHead(dst, i.majorType(), i.arg) })
}

// PushByteString appends a byte string.
func (b *Builder) PushByteString(bs []byte) error {
	return b.push(func(dst []byte) []byte {
		return append(appendHead(dst, byteStringMajorType, uint64(len(bs))), bs...)
	})
}

// PushTextString appends a text string.
func (b *Builder) PushTextString(s string) error {
	return b.push(func(dst []byte) []byte {
		return append(appendHead(dst, textStringMajorType, uint64(len(s))), s...)
	})
}

// PushSimple appends a simple value. Unassigned and reserved simple values are
// rejected and invalidate the Builder.
func (b *Builder) PushSimple(s Simple) error {
	if b.err != nil {
		return b.err
	}
	if err := s.check(); err != nil {
		return b.unwind(fmt.Errorf("error pushing simple value %d: %w", uint8(s), err))
	}
	return b.push(func(dst []byte) []byte { return appendSimple(dst, s) })
}

// PushBool appends true or false.
func (b *Builder) PushBool(v bool) error { return b.PushSimple(Bool(v)) }

// PushNull appends null.
func (b *Builder) PushNull() error { return b.PushSimple(Null) }

// PushFloat appends a float at its stored width.
func (b *Builder) PushFloat(f Float) error {
	if b.err != nil {
		return b.err
	}
	if !f.valid() {
		return b.unwind(fmt.Errorf("%w: invalid float width %d", ErrMalformed, f.Width))
	}
	return b.push(func(dst []byte) []byte { return appendFloat(dst, f) })
}

// PushTag appends the head of a tag. The next item pushed or container
// entered is the tag content.
func (b *Builder) PushTag(number uint64) error {
	if b.err != nil {
		return b.err
	}
	f := b.top()
	f.buf = appendHead(f.buf, tagMajorType, number)
	f.tagged = true
	return nil
}

// PushCbor appends one pre-encoded item. A fragment which is not exactly one
// well-formed item is rejected with ErrMalformedCbor and invalidates the
// Builder.
func (b *Builder) PushCbor(fragment []byte) error {
	if b.err != nil {
		return b.err
	}
	if err := Wellformed(fragment); err != nil {
		return b.unwind(fmt.Errorf("%w: %w", ErrMalformedCbor, err))
	}
	return b.push(func(dst []byte) []byte { return append(dst, fragment...) })
}

// Push appends the canonical encoding of a Value.
func (b *Builder) Push(v Value) error {
	if b.err != nil {
		return b.err
	}
	enc, err := Marshal(v)
	if err != nil {
		return b.unwind(err)
	}
	return b.push(func(dst []byte) []byte { return append(dst, enc...) })
}

// Enter opens a new array or map frame. Items pushed until the matching Leave
// become its contents.
func (b *Builder) Enter(kind ContainerType) error {
	if b.err != nil {
		return b.err
	}
	if kind != ArrayContainer && kind != MapContainer {
		return fmt.Errorf("%w: cannot enter %s", ErrInvalidContainerType, kind)
	}
	b.top().tagged = false
	b.frames = append(b.frames, frame{kind: kind})
	return nil
}

// Leave closes the innermost frame, writing its head and contents to the
// enclosing frame.
func (b *Builder) Leave() error {
	if b.err != nil {
		return b.err
	}
	if len(b.frames) <= 1 {
		return ErrEmptyStack
	}
	f := b.top()
	if f.tagged {
		return b.unwind(ErrDanglingTag)
	}
	majorType, count := arrayMajorType, f.count
	if f.kind == MapContainer {
		if f.count%2 != 0 {
			return b.unwind(ErrInvalidPairCount)
		}
		majorType, count = mapMajorType, f.count/2
	}

	child := f.buf
	b.frames[len(b.frames)-1] = frame{}
	b.frames = b.frames[:len(b.frames)-1]

	parent := b.top()
	parent.buf = appendHead(parent.buf, majorType, count)
	parent.buf = append(parent.buf, child...)
	parent.count++
	return nil
}

// Finish closes every open frame and returns the encoded bytes. The Builder
// must not be used afterwards.
func (b *Builder) Finish() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	for len(b.frames) > 1 {
		if err := b.Leave(); err != nil {
			return nil, err
		}
	}
	root := b.frames[0]
	if root.tagged {
		return nil, b.unwind(ErrDanglingTag)
	}
	b.unwind(errFinished)
	return root.buf, nil
}

var (
	errFinished = fmt.Errorf("cbor: builder already finished")
	errAborted  = fmt.Errorf("cbor: builder aborted")
)
