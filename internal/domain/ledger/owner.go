package ledger

import (
	"fmt"
	"strings"

	"github.com/opsconsole/backend/internal/domain/shared"
)

// BusinessTag marks an expense as paid by the business rather than an owner
const BusinessTag = "Business"

// Owner is a member of the distribution pool
type Owner struct {
	Name     string
	Eligible bool
}

// OwnerPool is the configured set of owners. Eligibility is a static business
// rule and does not change at runtime.
type OwnerPool struct {
	owners []Owner
	index  map[string]int
}

// NewOwnerPool builds the pool from configured names and the ineligible subset
func NewOwnerPool(names []string, ineligible []string) (*OwnerPool, error) {
	blocked := make(map[string]struct{}, len(ineligible))
	for _, n := range ineligible {
		blocked[strings.TrimSpace(n)] = struct{}{}
	}

	pool := &OwnerPool{index: make(map[string]int, len(names))}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || name == BusinessTag {
			return nil, fmt.Errorf("invalid owner name %q", raw)
		}
		if _, dup := pool.index[name]; dup {
			return nil, fmt.Errorf("duplicate owner name %q", name)
		}
		_, isBlocked := blocked[name]
		pool.index[name] = len(pool.owners)
		pool.owners = append(pool.owners, Owner{Name: name, Eligible: !isBlocked})
	}
	return pool, nil
}

// Owners returns the pool in configured order
func (p *OwnerPool) Owners() []Owner {
	out := make([]Owner, len(p.owners))
	copy(out, p.owners)
	return out
}

// Names returns owner names in configured order
func (p *OwnerPool) Names() []string {
	out := make([]string, len(p.owners))
	for i, o := range p.owners {
		out[i] = o.Name
	}
	return out
}

// Lookup finds an owner by name
func (p *OwnerPool) Lookup(name string) (Owner, bool) {
	i, ok := p.index[name]
	if !ok {
		return Owner{}, false
	}
	return p.owners[i], true
}

// ValidateExpenseTag checks that tag is either BusinessTag or a pool owner
func (p *OwnerPool) ValidateExpenseTag(tag string) error {
	if tag == BusinessTag {
		return nil
	}
	if _, ok := p.Lookup(tag); !ok {
		return shared.NewValidationError(shared.CodeUnknownOwner,
			fmt.Sprintf("expense_for must be %q or a configured owner, got %q", BusinessTag, tag))
	}
	return nil
}

// Selection is a validated, de-duplicated set of owners chosen for a split
type Selection struct {
	names []string
	set   map[string]struct{}
}

// Select validates the chosen owners. Unknown or ineligible owners are rejected.
func (p *OwnerPool) Select(names []string) (Selection, error) {
	sel := Selection{set: make(map[string]struct{}, len(names))}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		owner, ok := p.Lookup(name)
		if !ok {
			return Selection{}, shared.NewValidationError(shared.CodeUnknownOwner,
				fmt.Sprintf("unknown owner %q", name))
		}
		if !owner.Eligible {
			return Selection{}, shared.NewValidationError(shared.CodeIneligibleOwner,
				fmt.Sprintf("owner %q is not eligible for distributions", name))
		}
		if _, dup := sel.set[name]; dup {
			continue
		}
		sel.set[name] = struct{}{}
		sel.names = append(sel.names, name)
	}
	return sel, nil
}

// Has reports whether name is selected
func (s Selection) Has(name string) bool {
	_, ok := s.set[name]
	return ok
}

// Len returns the number of selected owners
func (s Selection) Len() int {
	return len(s.names)
}

// Names returns the selected owners in request order
func (s Selection) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
