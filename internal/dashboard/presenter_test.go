package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avrcli/pkg/contracts/domain"
)

func metricByID(t *testing.T, d *Dashboard, id string) Metric {
	t.Helper()
	for _, m := range d.Metrics {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("dashboard has no metric %q", id)
	return Metric{}
}

func TestBuild_OverAllocatedWarehouse(t *testing.T) {
	summary := domain.OccupancySummary{
		StoredTotal:  4100,
		OutsideTotal: 50,
		Stored075:    2000,
		Outside075:   50,
		Stored150:    2100,
		Outside150:   0,
		BalanceTotal: -40,
		Balance075:   30,
		Balance150:   -70,
	}
	capacities := domain.DefaultCapacities()

	d := Build(summary, capacities, nil, nil, nil)
	require.NotNil(t, d)
	assert.False(t, d.Empty)
	require.Len(t, d.Metrics, 9)

	occupancyTotal := metricByID(t, d, "ocupacao_total")
	assert.Equal(t, "Ocupação Total", occupancyTotal.Label)
	assert.Equal(t, 4100, occupancyTotal.Value)
	assert.Equal(t, "4.100", occupancyTotal.Formatted)
	assert.Equal(t, ToneNeutral, occupancyTotal.Tone)

	// Negative total balance flips the label and tone but keeps the
	// real signed value.
	balanceTotal := metricByID(t, d, "vagas_vazias_total")
	assert.Equal(t, "Sobre-alocação", balanceTotal.Label)
	assert.Equal(t, -40, balanceTotal.Value)
	assert.Equal(t, 40, balanceTotal.AbsValue)
	assert.Equal(t, "-40", balanceTotal.Formatted)
	assert.Equal(t, ToneNegative, balanceTotal.Tone)
	assert.Equal(t, "Sobre-alocação: 40 posições", balanceTotal.Detail)

	balance075 := metricByID(t, d, "vagas_vazias_075")
	assert.Equal(t, "0.75m Vazias (Saldo)", balance075.Label)
	assert.Equal(t, 30, balance075.Value)
	assert.Equal(t, TonePositive, balance075.Tone)

	balance150 := metricByID(t, d, "vagas_vazias_150")
	assert.Equal(t, "1.50m Sobre-alocação", balance150.Label)
	assert.Equal(t, -70, balance150.Value)
	assert.Equal(t, ToneNegative, balance150.Tone)

	discrepancy := metricByID(t, d, "discrepancia_total")
	assert.Equal(t, 50, discrepancy.Value)
	assert.Equal(t, ToneAlert, discrepancy.Tone)

	// Donuts: available slice while slots remain, over-allocation
	// slice once the class is past capacity.
	require.Len(t, d.Donuts, 2)

	donut075 := d.Donuts[0]
	assert.Equal(t, "Ocupação 0.75m", donut075.Title)
	assert.Equal(t, "Ref. Capacidade: 2.030", donut075.Subtitle)
	assert.Equal(t, 0.4, donut075.Hole)
	require.Len(t, donut075.Slices, 2)
	assert.Equal(t, ChartSlice{Label: "Ocupado", Value: 2000, Color: "#14854B"}, donut075.Slices[0])
	assert.Equal(t, ChartSlice{Label: "Vazio", Value: 30, Color: "#0B72A4"}, donut075.Slices[1])

	donut150 := d.Donuts[1]
	assert.Equal(t, "Ocupação 1.50m", donut150.Title)
	assert.Equal(t, ChartSlice{Label: "Ocupado", Value: 2100, Color: "#14854B"}, donut150.Slices[0])
	assert.Equal(t, ChartSlice{Label: "Excesso de Ocupação", Value: 70, Color: "#B03A43"}, donut150.Slices[1])

	require.NotNil(t, d.Bar)
	assert.Equal(t, "Discrepância (Fora do Armazém)", d.Bar.Title)
	require.Len(t, d.Bar.Bars, 2)
	assert.Equal(t, Bar{Label: "0.75", Value: 50, Color: "#B03A43"}, d.Bar.Bars[0])
	assert.Equal(t, Bar{Label: "1.50", Value: 0, Color: "#D36A72"}, d.Bar.Bars[1])
}

func TestBuild_AvailabilityDetail(t *testing.T) {
	summary := domain.OccupancySummary{
		StoredTotal:  30,
		Stored075:    30,
		BalanceTotal: 70,
		Balance075:   20,
		Balance150:   50,
	}
	capacities := domain.CapacityConfig{Total: 100, Height075: 50, Height150: 50}

	d := Build(summary, capacities, nil, nil, nil)

	balanceTotal := metricByID(t, d, "vagas_vazias_total")
	assert.Equal(t, "Vagas Vazias (Saldo)", balanceTotal.Label)
	assert.Equal(t, TonePositive, balanceTotal.Tone)
	assert.Equal(t, "70.0% disponível", balanceTotal.Detail)

	// Per-height balance cards carry no percentage.
	assert.Empty(t, metricByID(t, d, "vagas_vazias_075").Detail)
}

func TestBuild_EmptyFilterKeepsMetricsDropsCharts(t *testing.T) {
	capacities := domain.DefaultCapacities()
	summary := domain.OccupancySummary{
		BalanceTotal: capacities.Total,
		Balance075:   capacities.Height075,
		Balance150:   capacities.Height150,
	}

	d := Build(summary, capacities, nil, []string{"EMPTY_FILTER_WARNING"}, nil)

	assert.True(t, d.Empty)
	assert.Nil(t, d.Donuts)
	assert.Nil(t, d.Bar)
	require.Len(t, d.Metrics, 9)
	assert.Equal(t, 0, metricByID(t, d, "ocupacao_total").Value)
	assert.Equal(t, []string{"EMPTY_FILTER_WARNING"}, d.Warnings)
}

func TestBuild_TableFiltersToCountedStatuses(t *testing.T) {
	table := &domain.SlotTable{
		Columns: []string{"Altura", "Estado Contentor", "Posição"},
		Rows: []domain.SlotRecord{
			{Height: 0.75, Status: domain.StatusStored, Cells: []string{"0.75", "Armazenado", "A-01"}},
			{Height: 1.5, Status: domain.StatusInTransit, Cells: []string{"1.50", "Em Trânsito", "B-01"}},
			{Height: 1.5, Status: domain.StatusOutside, Cells: []string{"1.50", "Fora do Armazém", "C-01"}},
		},
	}
	summary := domain.OccupancySummary{StoredTotal: 1, OutsideTotal: 1, Stored075: 1, Outside150: 1}

	d := Build(summary, domain.DefaultCapacities(), table, nil, nil)

	assert.Equal(t, []string{"Altura", "Estado Contentor", "Posição"}, d.Table.Columns)
	require.Equal(t, 2, d.Table.Total)
	assert.Equal(t, []string{"0.75", "Armazenado", "A-01"}, d.Table.Rows[0])
	assert.Equal(t, []string{"1.50", "Fora do Armazém", "C-01"}, d.Table.Rows[1])
}

func TestBuild_AdvisoriesArePassedThrough(t *testing.T) {
	advisory := "capacity split is inconsistent"
	d := Build(domain.OccupancySummary{StoredTotal: 1, Stored075: 1}, domain.DefaultCapacities(), nil, nil, []string{advisory})

	assert.Equal(t, []string{advisory}, d.Advisories)
	assert.False(t, d.Empty)
}
