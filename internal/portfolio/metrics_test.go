package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeUsesLatestBaseline(t *testing.T) {
	m := Compute(testProjects()[0], testTransactions(), testBaselines())

	assert.Equal(t, "1200000", m.Budgeted.String())
	assert.Equal(t, "900000", m.Realized.String())
	assert.Equal(t, "100000", m.Committed.String())
	require.NotNil(t, m.Deviation)
	assert.Equal(t, "-25", m.Deviation.String())
	assert.Equal(t, "75", m.ExecutionRate.String())
	assert.Equal(t, "100", m.BU.String())
	assert.Equal(t, "0.67", m.CPI.String())
	assert.Equal(t, "0.83", m.SPI.String())
}

func TestComputeWithoutBaseline(t *testing.T) {
	m := Compute(testProjects()[1], testTransactions(), testBaselines())

	assert.Equal(t, "500000", m.Budgeted.String())
	assert.Equal(t, "12", m.Deviation.String())
	assert.Equal(t, "112", m.ExecutionRate.String())
	assert.Equal(t, "1", m.SPI.String())
}

func TestComputeIgnoresRejectedBaseline(t *testing.T) {
	baselines := append(testBaselines(), Baseline{
		ID: "bl-3", ProjectCode: "PRJ-001", Version: 3, ApprovedBudget: dec("9999999"), Status: "rejected",
	})
	m := Compute(testProjects()[0], nil, baselines)
	assert.Equal(t, "1200000", m.Budgeted.String())
}

func TestComputeZeroDenominators(t *testing.T) {
	m := Compute(Project{Code: "X"}, nil, nil)
	assert.Nil(t, m.Deviation)
	assert.Nil(t, m.ExecutionRate)
	assert.Nil(t, m.BU)
	assert.Nil(t, m.CPI)
	assert.Nil(t, m.SPI)
}

func TestSummarize(t *testing.T) {
	sum := Summarize(ComputeAll(testProjects(), testTransactions(), testBaselines()))

	assert.Equal(t, 2, sum.Projects)
	assert.Equal(t, "1500000", sum.TotalBudget.String())
	assert.Equal(t, "1460000", sum.Realized.String())
	assert.Equal(t, []string{"PRJ-002"}, sum.OverBudget)
	assert.Equal(t, []string{"PRJ-002"}, sum.Critical)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, 0, sum.Projects)
	assert.Nil(t, sum.Deviation)
	assert.NotNil(t, sum.Critical)
}
