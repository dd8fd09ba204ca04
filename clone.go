package luhn

// Cloner allows types to provide deep copy logic.
// Implementing this interface is required for use with Redactor.
//
// The Clone method must return a deep copy where modifications to the clone
// do not affect the original value. Redactor replaces tagged slices and maps
// with fresh copies itself, but pointers to nested structs are followed in
// place, so types holding such pointers must copy them:
//
//	func (o Order) Clone() Order {
//	    c := o
//	    if o.Billing != nil {
//	        b := *o.Billing
//	        c.Billing = &b
//	    }
//	    return c
//	}
//
// For simple value types Clone can return the receiver:
//
//	func (p Payment) Clone() Payment { return p }
type Cloner[T any] interface {
	Clone() T
}
