package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lifedash/internal/domain"
)

func TestNormalizeLifeDomain_CaseAndWhitespace(t *testing.T) {
	assert.Equal(t, domain.DomainPets, domain.NormalizeLifeDomain("Pets"))
	assert.Equal(t, domain.DomainFinance, domain.NormalizeLifeDomain("  FINANCE "))
	assert.Equal(t, domain.DomainHealth, domain.NormalizeLifeDomain("health"))
}

func TestNormalizeLifeDomain_KeepsUnknownForValidation(t *testing.T) {
	d := domain.NormalizeLifeDomain("Spaceships")
	assert.Equal(t, domain.LifeDomain("spaceships"), d)
	assert.False(t, domain.KnownLifeDomains[d])
}

func TestCoerceLifeDomain_FallsBackToOther(t *testing.T) {
	assert.Equal(t, domain.DomainPets, domain.CoerceLifeDomain(" Pets "))
	assert.Equal(t, domain.DomainOther, domain.CoerceLifeDomain("spaceships"))
	assert.Equal(t, domain.DomainOther, domain.CoerceLifeDomain(""))
}
