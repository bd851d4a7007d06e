// Package ownership tracks which side owns a native resource.
//
// A Pointer is either Owned (this side must release the resource) or
// Borrowed. At most one live Pointer may own a given resource; Reinterpret
// moves ownership instead of copying it.
//
// Ownership is goroutine-confined: moving it across goroutines requires
// external synchronization.
package ownership

import (
	"fmt"

	gerrors "github.com/thesyncim/libgobind/pkg/errors"
)

// Transfer is the ownership transfer mode of a native return value or argument.
type Transfer uint8

const (
	// TransferNothing: the callee keeps responsibility for the resource.
	TransferNothing Transfer = iota
	// TransferContainer: the caller owns the container but not its elements.
	TransferContainer
	// TransferEverything: the caller owns the resource and must release it.
	TransferEverything
)

func (t Transfer) String() string {
	switch t {
	case TransferNothing:
		return "nothing"
	case TransferContainer:
		return "container"
	case TransferEverything:
		return "everything"
	default:
		return fmt.Sprintf("transfer(%d)", uint8(t))
	}
}

// OwnsResult reports whether a result with this transfer mode must be
// released by the caller.
func (t Transfer) OwnsResult() bool { return t == TransferEverything }

// ParseTransfer parses "nothing", "container" or "everything".
func ParseTransfer(s string) (Transfer, error) {
	switch s {
	case "", "nothing", "none":
		return TransferNothing, nil
	case "container":
		return TransferContainer, nil
	case "everything", "full":
		return TransferEverything, nil
	default:
		return TransferNothing, fmt.Errorf("%w: unknown transfer mode %q", gerrors.ErrValidation, s)
	}
}

// Ownership tags a Pointer.
type Ownership uint8

const (
	Borrowed Ownership = iota
	Owned
)

func (o Ownership) String() string {
	if o == Owned {
		return "owned"
	}
	return "borrowed"
}

// Named is anything with a type name; binding types implement it.
type Named interface {
	Name() string
}

// Pointer is a handle to a native resource.
type Pointer struct {
	addr uintptr
	typ  Named
	own  Ownership
}

// New returns a Pointer to addr tagged with typ.
func New(addr uintptr, typ Named, own Ownership) *Pointer {
	return &Pointer{addr: addr, typ: typ, own: own}
}

// Borrow returns a borrowed Pointer to addr.
func Borrow(addr uintptr, typ Named) *Pointer {
	return New(addr, typ, Borrowed)
}

// Addr returns the native address.
func (p *Pointer) Addr() uintptr {
	if p == nil {
		return 0
	}
	return p.addr
}

// Type returns the type tag, which may be nil for opaque pointers.
func (p *Pointer) Type() Named { return p.typ }

// IsNull reports whether p is nil or points at address zero.
func (p *Pointer) IsNull() bool { return p == nil || p.addr == 0 }

// Ownership returns the current ownership tag.
func (p *Pointer) Ownership() Ownership { return p.own }

// Owns reports whether this Pointer is responsible for releasing the resource.
func (p *Pointer) Owns() bool { return p != nil && p.own == Owned }

// Adopt marks the Pointer as owning its resource, for results handed over
// by the callee.
func (p *Pointer) Adopt() {
	p.own = Owned
}

// Disown gives up ownership and reports whether p owned the resource.
func (p *Pointer) Disown() bool {
	owned := p.own == Owned
	p.own = Borrowed
	return owned
}

// Release calls free with the address if p owns the resource. Ownership is
// cleared only when free succeeds, so a failed release can be retried. It
// reports whether the resource was freed.
func (p *Pointer) Release(free func(addr uintptr) error) (bool, error) {
	if p.IsNull() || !p.Owns() {
		return false, nil
	}
	if err := free(p.addr); err != nil {
		return false, err
	}
	p.own = Borrowed
	return true, nil
}

func (p *Pointer) String() string {
	name := "void"
	if p.typ != nil {
		name = p.typ.Name()
	}
	return fmt.Sprintf("<%s pointer %#x %s>", name, p.addr, p.own)
}

// Reinterpret returns a Pointer of type target aliasing p's address and
// moves ownership to it: the result owns the resource iff p did, and p is
// left borrowed. The caller guarantees that both types describe the same
// native handle.
func Reinterpret(p *Pointer, target Named) *Pointer {
	if p == nil {
		return nil
	}
	out := &Pointer{addr: p.addr, typ: target, own: p.own}
	p.own = Borrowed
	return out
}
