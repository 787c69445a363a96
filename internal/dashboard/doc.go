// Package dashboard builds the render-ready payload for an occupancy
// report: KPI metrics, one donut chart per rack height, the discrepancy
// bar chart and the filtered data table.
//
// Construction is pure. The HTTP layer serializes the payload, the CLI
// formats it as text; neither needs chart or styling logic because the
// sign-dependent labels, tones and colors are decided here:
//
//   - a non-negative balance renders as "Vagas Vazias (Saldo)" with a
//     positive tone; a negative one switches the label to
//     "Sobre-alocação" and the tone to negative, keeping the real
//     signed value visible
//   - the donut's non-occupied slice is "Vazio" (blue) while slots
//     remain, "Excesso de Ocupação" (red) once the height class is
//     over-allocated
//
// Counts are formatted with "." as the thousands separator, matching
// the warehouse team's pt-PT reports ("4.060").
package dashboard
