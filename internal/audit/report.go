package audit

import "sort"

// Result is the accuracy of one label's signature over its screenshots.
type Result struct {
	Label        string   `json:"label"`
	Correct      int      `json:"correct"`
	Incorrect    int      `json:"incorrect"`
	Percent      float64  `json:"percent"`
	FailedImages []string `json:"failed_images"`
}

// Total returns the number of screenshots audited for the label.
func (r Result) Total() int { return r.Correct + r.Incorrect }

// Report is the outcome of one audit run, with results sorted by label.
type Report struct {
	Tolerance int      `json:"tolerance"`
	Results   []Result `json:"results"`
}

// Totals summarises a report across labels.
type Totals struct {
	Labels    int     `json:"labels"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Percent   float64 `json:"percent"`
}

// Lookup returns the result for label.
func (r Report) Lookup(label string) (Result, bool) {
	i := sort.Search(len(r.Results), func(i int) bool { return r.Results[i].Label >= label })
	if i < len(r.Results) && r.Results[i].Label == label {
		return r.Results[i], true
	}
	return Result{}, false
}

// Labels returns the audited labels in report order.
func (r Report) Labels() []string {
	labels := make([]string, len(r.Results))
	for i, res := range r.Results {
		labels[i] = res.Label
	}
	return labels
}

// Failing returns only the results with at least one misclassified screenshot.
func (r Report) Failing() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Incorrect > 0 {
			out = append(out, res)
		}
	}
	return out
}

// Totals sums correct and incorrect counts over every label.
func (r Report) Totals() Totals {
	t := Totals{Labels: len(r.Results)}
	for _, res := range r.Results {
		t.Correct += res.Correct
		t.Incorrect += res.Incorrect
	}
	t.Percent = percent(t.Correct, t.Incorrect)
	return t
}

func percent(correct, incorrect int) float64 {
	total := correct + incorrect
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
