package luhn

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const (
	testCard       = "4111 1111 1111 1111"
	testCardMasked = "XXXX XXXX XXXX XXXX"
)

// PlainRecord has no luhn tags.
type PlainRecord struct {
	ID   string `json:"id"`
	Note string `json:"note"`
}

func (r PlainRecord) Clone() PlainRecord { return r }

// Address is nested inside Payment.
type Address struct {
	Line1 string `json:"line1" luhn:"mask"`
	City  string `json:"city"`
}

// Payment exercises every supported field shape.
type Payment struct {
	ID       string            `json:"id"`
	Memo     string            `json:"memo" luhn:"mask"`
	Raw      []byte            `json:"raw" luhn:"mask"`
	Comments []string          `json:"comments" luhn:"mask"`
	Meta     map[string]string `json:"meta" luhn:"mask"`
	Billing  Address           `json:"billing"`
	Shipping *Address          `json:"shipping"`
}

func (p Payment) Clone() Payment {
	c := p
	if p.Shipping != nil {
		s := *p.Shipping
		c.Shipping = &s
	}
	return c
}

type BadActionRecord struct {
	Memo string `luhn:"encrypt"`
}

func (r BadActionRecord) Clone() BadActionRecord { return r }

type BadTypeRecord struct {
	Amount int `luhn:"mask"`
}

func (r BadTypeRecord) Clone() BadTypeRecord { return r }

// ScrubRecord handles its own masking.
type ScrubRecord struct {
	Memo string
	Fail bool
}

func (r ScrubRecord) Clone() ScrubRecord { return r }

func (r *ScrubRecord) Scrub(mask func(string) string) error {
	if r.Fail {
		return errors.New("scrub refused")
	}
	r.Memo = mask(r.Memo)
	return nil
}

func TestNewRedactor(t *testing.T) {
	r, err := NewRedactor[Payment]()
	if err != nil {
		t.Fatalf("NewRedactor() error: %v", err)
	}

	want := map[string]bool{
		"Memo": true, "Raw": true, "Comments": true, "Meta": true,
		"Billing.Line1": true, "Shipping.Line1": true,
	}
	got := r.Fields()
	if len(got) != len(want) {
		t.Fatalf("Fields() = %v, want %d fields", got, len(want))
	}
	for _, name := range got {
		if !want[name] {
			t.Errorf("unexpected field %q", name)
		}
	}
}

func TestNewRedactor_InvalidTag(t *testing.T) {
	_, err := NewRedactor[BadActionRecord]()
	if !errors.Is(err, ErrInvalidTag) {
		t.Errorf("NewRedactor() error = %v, want ErrInvalidTag", err)
	}

	_, err = NewRedactor[BadTypeRecord]()
	if !errors.Is(err, ErrInvalidTag) {
		t.Errorf("NewRedactor() error = %v, want ErrInvalidTag", err)
	}
}

// Ledger refers to itself and nests a pointer two levels down.
type Ledger struct {
	Note   string `luhn:"mask"`
	Parent *Ledger
	Order  Order
}

type Order struct {
	Ref      string
	Shipping *Address
}

func (l Ledger) Clone() Ledger {
	c := l
	if l.Order.Shipping != nil {
		s := *l.Order.Shipping
		c.Order.Shipping = &s
	}
	return c
}

type TaggedStructRecord struct {
	Billing Address `luhn:"mask"`
}

func (r TaggedStructRecord) Clone() TaggedStructRecord { return r }

func TestNewRedactor_NestedAndCyclic(t *testing.T) {
	r, err := NewRedactor[Ledger]()
	if err != nil {
		t.Fatalf("NewRedactor() error: %v", err)
	}
	got := strings.Join(r.Fields(), ",")
	if got != "Note,Order.Shipping.Line1" {
		t.Errorf("Fields() = %q, want %q", got, "Note,Order.Shipping.Line1")
	}

	in := &Ledger{Note: testCard, Order: Order{Ref: testCard, Shipping: &Address{Line1: testCard}}}
	out, err := r.Redact(context.Background(), in)
	if err != nil {
		t.Fatalf("Redact() error: %v", err)
	}
	if out.Note != testCardMasked || out.Order.Shipping.Line1 != testCardMasked {
		t.Errorf("Redact() = %+v, shipping %+v", out, out.Order.Shipping)
	}
	if out.Order.Ref != testCard {
		t.Errorf("untagged Ref = %q, want unchanged", out.Order.Ref)
	}
	if in.Order.Shipping.Line1 != testCard {
		t.Error("input was modified")
	}
}

func TestNewRedactor_TaggedStruct(t *testing.T) {
	_, err := NewRedactor[TaggedStructRecord]()
	if !errors.Is(err, ErrInvalidTag) {
		t.Errorf("NewRedactor() error = %v, want ErrInvalidTag", err)
	}
}

func TestRedactor_Redact(t *testing.T) {
	r, err := NewRedactor[Payment]()
	if err != nil {
		t.Fatalf("NewRedactor() error: %v", err)
	}

	in := &Payment{
		ID:       "4111111111111111",
		Memo:     "paid with " + testCard,
		Raw:      []byte(testCard),
		Comments: []string{"none", testCard},
		Meta:     map[string]string{"card": testCard, "ok": "fine"},
		Billing:  Address{Line1: testCard, City: "4111111111111111"},
		Shipping: &Address{Line1: "apt " + testCard},
	}

	out, err := r.Redact(context.Background(), in)
	if err != nil {
		t.Fatalf("Redact() error: %v", err)
	}

	if out.ID != "4111111111111111" {
		t.Errorf("untagged ID changed: %q", out.ID)
	}
	if out.Memo != "paid with "+testCardMasked {
		t.Errorf("Memo = %q", out.Memo)
	}
	if string(out.Raw) != testCardMasked {
		t.Errorf("Raw = %q", out.Raw)
	}
	if out.Comments[0] != "none" || out.Comments[1] != testCardMasked {
		t.Errorf("Comments = %q", out.Comments)
	}
	if out.Meta["card"] != testCardMasked || out.Meta["ok"] != "fine" {
		t.Errorf("Meta = %v", out.Meta)
	}
	if out.Billing.Line1 != testCardMasked || out.Billing.City != "4111111111111111" {
		t.Errorf("Billing = %+v", out.Billing)
	}
	if out.Shipping.Line1 != "apt "+testCardMasked {
		t.Errorf("Shipping = %+v", out.Shipping)
	}

	// The input must be untouched.
	if in.Memo != "paid with "+testCard || string(in.Raw) != testCard ||
		in.Comments[1] != testCard || in.Meta["card"] != testCard ||
		in.Billing.Line1 != testCard || in.Shipping.Line1 != "apt "+testCard {
		t.Errorf("input was modified: %+v", in)
	}
}

func TestRedactor_NilAndEmpty(t *testing.T) {
	r, _ := NewRedactor[Payment]()

	out, err := r.Redact(context.Background(), nil)
	if err != nil || out != nil {
		t.Errorf("Redact(nil) = %v, %v; want nil, nil", out, err)
	}

	out, err = r.Redact(context.Background(), &Payment{ID: "1"})
	if err != nil {
		t.Fatalf("Redact() error: %v", err)
	}
	if out.Shipping != nil || out.Comments != nil || out.Meta != nil || out.Raw != nil {
		t.Errorf("nil fields should stay nil: %+v", out)
	}
}

func TestRedactor_NoTags(t *testing.T) {
	r, err := NewRedactor[PlainRecord]()
	if err != nil {
		t.Fatalf("NewRedactor() error: %v", err)
	}
	in := &PlainRecord{ID: "1", Note: testCard}
	out, err := r.Redact(context.Background(), in)
	if err != nil {
		t.Fatalf("Redact() error: %v", err)
	}
	if out.Note != testCard {
		t.Errorf("untagged Note changed: %q", out.Note)
	}
}

func TestRedactor_Scrubbable(t *testing.T) {
	r, err := NewRedactor[ScrubRecord]()
	if err != nil {
		t.Fatalf("NewRedactor() error: %v", err)
	}

	out, err := r.Redact(context.Background(), &ScrubRecord{Memo: testCard})
	if err != nil {
		t.Fatalf("Redact() error: %v", err)
	}
	if out.Memo != testCardMasked {
		t.Errorf("Memo = %q, want %q", out.Memo, testCardMasked)
	}

	_, err = r.Redact(context.Background(), &ScrubRecord{Memo: testCard, Fail: true})
	if !errors.Is(err, ErrRedact) {
		t.Errorf("Redact() error = %v, want ErrRedact", err)
	}
	if err != nil && !strings.Contains(err.Error(), "scrub refused") {
		t.Errorf("error %q should carry the cause", err)
	}
}

func TestRedactor_Concurrent(t *testing.T) {
	r, _ := NewRedactor[Payment]()
	done := make(chan string, 16)
	for i := 0; i < 16; i++ {
		go func() {
			out, err := r.Redact(context.Background(), &Payment{Memo: testCard})
			if err != nil {
				done <- err.Error()
				return
			}
			done <- out.Memo
		}()
	}
	for i := 0; i < 16; i++ {
		if got := <-done; got != testCardMasked {
			t.Errorf("Memo = %q", got)
		}
	}
}
