/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: policy.go
Description: Preserve policy. A set of field names whose original values are copied verbatim
into generated records. Matching is by field name, never by full path.
*/

package policy

import (
	"sort"
	"strings"

	"github.com/kleascm/mockjson/pkg/mockerr"
)

// DefaultFields are preserved unless configuration says otherwise
var DefaultFields = []string{
	// API response metadata
	"status", "message", "transId", "entity",
	// Identity and flags
	"id", "requiredRenewal", "isExpired", "isActive", "isSmart", "isKlasi", "isRiziko",
	"isCopyPolicyDoc", "isPaila", "isIndependent", "isNew", "sign", "eSite",
	// Savings and payments
	"totalPayments", "paymentNo", "yieldBeginningYear", "lastDeposit", "depositedThisYear",
	"availableWithdraw", "withdrawDate", "yieldFromYearBeginningTotal", "fromDeposit",
	"fromSaving", "yieldUpdateDate", "dailyYieldUpdateDate", "hasProfitsShare",
	"updateTo", "dailyUpdateTo", "tsuotPopup",
}

// Policy is a set of preserved field names
type Policy struct {
	fields map[string]struct{}
}

// New creates a policy from names, ignoring repeats and blanks
func New(names ...string) *Policy {
	p := &Policy{fields: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			p.fields[name] = struct{}{}
		}
	}
	return p
}

// Default creates the stock policy
func Default() *Policy {
	return New(DefaultFields...)
}

// Has reports whether a field name is preserved
func (p *Policy) Has(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.fields[name]
	return ok
}

// Add preserves a field name; adding a present name is ErrDuplicateField
func (p *Policy) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return mockerr.New(mockerr.ErrInvalidRequest, "preserve add", name).With("reason", "empty field name")
	}
	if p.Has(name) {
		return mockerr.New(mockerr.ErrDuplicateField, "preserve add", name)
	}
	p.fields[name] = struct{}{}
	return nil
}

// Remove stops preserving a field name; removing an absent name is ErrFieldNotFound
func (p *Policy) Remove(name string) error {
	name = strings.TrimSpace(name)
	if !p.Has(name) {
		return mockerr.New(mockerr.ErrFieldNotFound, "preserve remove", name)
	}
	delete(p.fields, name)
	return nil
}

// List returns the preserved names sorted
func (p *Policy) List() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.fields))
	for name := range p.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of preserved names
func (p *Policy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.fields)
}

// Clone returns an independent copy
func (p *Policy) Clone() *Policy {
	return New(p.List()...)
}
