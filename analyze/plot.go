package analyze

import (
	"fmt"

	plt "github.com/phil-mansfield/pyplot"
)

// PlotPressure queues a figure of both pressures against time and saves it to
// fname. Figures are only rendered once plt.Execute is called.
func PlotPressure(bins []Bin, fname string) {
	ts := make([]float64, len(bins))
	pc := make([]float64, len(bins))
	po := make([]float64, len(bins))
	for i, b := range bins {
		ts[i] = (b.Start + b.End) / 2
		pc[i], po[i] = b.Container, b.Obstacle
	}

	plt.Figure(plt.FigSize(8, 6))
	plt.Plot(ts, pc, "o-", plt.LW(2), plt.C("b"))
	plt.Plot(ts, po, "s-", plt.LW(2), plt.C("r"))
	plt.Title("Container (blue) and obstacle (red) pressure")
	plt.XLabel(`$t$ [s]`, plt.FontSize(16))
	plt.YLabel(`$P$ [N/m]`, plt.FontSize(16))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}

// PlotFirstHits queues a figure of the number of distinct disks which have
// reached the obstacle against time.
func PlotFirstHits(ts []float64, n int, fname string) {
	counts := make([]float64, len(ts))
	for i := range counts {
		counts[i] = float64(i + 1)
	}

	plt.Figure(plt.FigSize(8, 6))
	plt.Plot(ts, counts, "k", plt.LW(2))
	plt.Title(fmt.Sprintf("Distinct obstacle hits, %d disks", n))
	plt.XLabel(`$t$ [s]`, plt.FontSize(16))
	plt.YLabel(`$N_{\rm hits}$`, plt.FontSize(16))
	if n > 0 {
		plt.YLim(0, float64(n))
	}
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}
