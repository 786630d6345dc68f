package forest

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/crimson-sun/pathobridge/internal/model"
)

// StratifiedSplit partitions row indices into train and test sets keeping
// the class proportions of y. Each class contributes round(frac·n) rows to
// the test set. Both results are sorted.
func StratifiedSplit(y []int, frac float64, rng *rand.Rand) (train, test []int) {
	byClass := map[int][]int{}
	var classes []int
	for i, c := range y {
		if _, ok := byClass[c]; !ok {
			classes = append(classes, c)
		}
		byClass[c] = append(byClass[c], i)
	}
	sort.Ints(classes)
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		k := int(math.Round(frac * float64(len(idx))))
		test = append(test, idx[:k]...)
		train = append(train, idx[k:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// ClassMetrics are the per-class scores of a classification report.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes binary predictions.
type Report struct {
	Classes  [2]ClassMetrics
	Accuracy float64
	Macro    ClassMetrics
	Weighted ClassMetrics
}

// Evaluate builds a classification report. Undefined ratios are 0.
func Evaluate(yTrue, yPred []int) Report {
	var tp, fp, fn [2]float64
	var r Report
	correct := 0
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		r.Classes[t].Support++
		if t == p {
			tp[t]++
			correct++
		} else {
			fp[p]++
			fn[t]++
		}
	}
	n := len(yTrue)
	for c := range r.Classes {
		m := &r.Classes[c]
		m.Precision = ratio(tp[c], tp[c]+fp[c])
		m.Recall = ratio(tp[c], tp[c]+fn[c])
		m.F1 = ratio(2*m.Precision*m.Recall, m.Precision+m.Recall)

		r.Macro.Precision += m.Precision / 2
		r.Macro.Recall += m.Recall / 2
		r.Macro.F1 += m.F1 / 2
		w := ratio(float64(m.Support), float64(n))
		r.Weighted.Precision += w * m.Precision
		r.Weighted.Recall += w * m.Recall
		r.Weighted.F1 += w * m.F1
	}
	r.Accuracy = ratio(float64(correct), float64(n))
	r.Macro.Support, r.Weighted.Support = n, n
	return r
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Table renders the report with one row per class plus accuracy, macro and
// weighted averages.
func (r Report) Table(name string) model.Table {
	t := model.Table{
		Name: name,
		Columns: []model.Column{
			{Name: "", Kind: model.String},
			{Name: "precision", Kind: model.Float},
			{Name: "recall", Kind: model.Float},
			{Name: "f1-score", Kind: model.Float},
			{Name: "support", Kind: model.Float},
		},
	}
	row := func(label string, m ClassMetrics) []any {
		return []any{label, m.Precision, m.Recall, m.F1, float64(m.Support)}
	}
	for c, m := range r.Classes {
		t.Rows = append(t.Rows, row(strconv.Itoa(c), m))
	}
	t.Rows = append(t.Rows,
		[]any{"accuracy", r.Accuracy, r.Accuracy, r.Accuracy, r.Accuracy},
		row("macro avg", r.Macro),
		row("weighted avg", r.Weighted),
	)
	return t
}

// ROC returns the false and true positive rates at every score cutoff and
// the area under the curve.
func ROC(yTrue []int, scores []float64) (fpr, tpr []float64, auc float64) {
	n := len(scores)
	y := make([]float64, n)
	classes := make([]bool, n)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	for k, i := range idx {
		y[k] = scores[i]
		classes[k] = yTrue[i] == 1
	}
	tpr, fpr, _ = stat.ROC(nil, y, classes, nil)
	if len(fpr) < 2 {
		return fpr, tpr, math.NaN()
	}
	return fpr, tpr, integrate.Trapezoidal(fpr, tpr)
}

// TopFeatures returns the indices of the n largest importances, largest
// first. Ties keep feature order.
func TopFeatures(importances []float64, n int) []int {
	idx := make([]int, len(importances))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return importances[idx[a]] > importances[idx[b]] })
	if n < len(idx) {
		idx = idx[:n]
	}
	return idx
}
