package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinlix/service-booking/internal/domain/catalog"
	"github.com/clinlix/service-booking/pkg/domain"
)

func testPackage() *catalog.ServicePackage {
	return &catalog.ServicePackage{
		ID:                  uuid.New(),
		Name:                "Standard Clean",
		OneTimePriceCents:   4850,
		RecurringPriceCents: 3900,
		Active:              true,
	}
}

func TestComputeEstimateOneTime(t *testing.T) {
	est, err := ComputeEstimate(testPackage(), nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4850), est.BaseCents)
	assert.Equal(t, int64(0), est.AddonsCents)
	assert.Equal(t, int64(4850), est.TotalCents())
}

func TestComputeEstimateRecurring(t *testing.T) {
	est, err := ComputeEstimate(testPackage(), nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3900), est.TotalCents())
}

func TestComputeEstimateWithAddons(t *testing.T) {
	oven := &catalog.Addon{ID: uuid.New(), Name: "Oven", PriceCents: 1500, Active: true}
	windows := &catalog.Addon{ID: uuid.New(), Name: "Windows", PriceCents: 1225, Active: true}

	est, err := ComputeEstimate(
		testPackage(),
		[]*catalog.Addon{oven, windows},
		[]uuid.UUID{oven.ID, windows.ID},
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(4850), est.BaseCents)
	assert.Equal(t, int64(2725), est.AddonsCents)
	assert.Equal(t, int64(7575), est.TotalCents())
}

func TestComputeEstimateUnknownAddon(t *testing.T) {
	oven := &catalog.Addon{ID: uuid.New(), Name: "Oven", PriceCents: 1500, Active: true}
	missing := uuid.New()

	_, err := ComputeEstimate(
		testPackage(),
		[]*catalog.Addon{oven},
		[]uuid.UUID{oven.ID, missing},
		false,
	)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidAddon))
	assert.Contains(t, err.Error(), missing.String())
}

// Recomputing the estimate always yields the same integer total.
func TestComputeEstimateDeterministic(t *testing.T) {
	oven := &catalog.Addon{ID: uuid.New(), Name: "Oven", PriceCents: 1500, Active: true}
	pkg := testPackage()

	first, err := ComputeEstimate(pkg, []*catalog.Addon{oven}, []uuid.UUID{oven.ID}, false)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := ComputeEstimate(pkg, []*catalog.Addon{oven}, []uuid.UUID{oven.ID}, false)
		require.NoError(t, err)
		assert.Equal(t, first.TotalCents(), again.TotalCents())
	}
}
