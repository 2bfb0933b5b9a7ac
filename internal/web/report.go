package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/JonMunkholm/bankrecon/internal/metrics"
	"github.com/JonMunkholm/bankrecon/internal/service"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

const reportStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;margin-bottom:1.5rem}
th,td{border:1px solid #d1d5db;padding:.3rem .6rem;text-align:left}
th{background:#f3f4f6}
.kpi{display:inline-block;margin:0 1.5rem 1rem 0}
.kpi b{display:block;font-size:1.3rem}`

// handleRunReport renders the printable HTML report for a run.
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.Get(chi.URLParam(r, "runID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	report, err := s.service.Metrics(r.Context(), run.ID, filterFromQuery(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RunReport(run, report).Render(r.Context(), w); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
	}
}

// RunReport is the HTML report component for a run.
func RunReport(run *service.Run, report *metrics.Report) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		stats := run.Result.Stats
		sum := report.Summary

		p.raw("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
		p.text("Run " + run.ID)
		p.raw("</title><style>" + reportStyle + "</style></head><body>")

		p.raw("<h1>")
		p.text(run.FileName)
		p.raw("</h1><p>Run ")
		p.text(run.ID)
		p.raw(" processed ")
		p.text(run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		p.raw("</p>")

		p.raw("<h2>Processing</h2>")
		p.kpi("Total records", fmt.Sprint(stats.TotalRecords))
		p.kpi("Valid", fmt.Sprint(stats.ValidRecords))
		p.kpi("Invalid", fmt.Sprint(stats.InvalidRecords))
		p.kpi("Duplicates", fmt.Sprint(stats.DuplicateRecords))
		p.kpi("Reconciliation issues", fmt.Sprint(len(stats.ReconciliationIssues)))
		p.kpi("Time (ms)", fmt.Sprint(stats.ProcessingTimeMs))

		errs := core.SummarizeValidationErrors(stats.ValidationErrors)
		p.table("Validation errors", []string{"Code", "Error", "Rows", "Action"}, len(errs), func(i int) []string {
			e := errs[i]
			return []string{e.Code, e.Message, fmt.Sprint(e.Count), e.Action}
		})

		p.raw("<h2>Summary</h2>")
		p.kpi("Customers", fmt.Sprint(sum.UniqueCustomers))
		p.kpi("Transactions", fmt.Sprint(sum.TotalTransactions))
		p.kpi("Total balance", money(sum.TotalBalance))
		p.kpi("Deposits", money(sum.TotalDeposits))
		p.kpi("Withdrawals", money(sum.TotalWithdrawals))
		p.kpi("Net inflow", money(sum.NetInflow))
		p.kpi("Loan approval", fmt.Sprintf("%.1f%%", sum.ApprovalRate))

		p.table("Volume by branch", []string{"Branch", "Month", "Volume"}, len(report.VolumeByBranch), func(i int) []string {
			v := report.VolumeByBranch[i]
			return []string{v.Branch, v.Month, money(v.Volume)}
		})

		cmp := report.BranchComparison
		p.table("Branch comparison "+cmp.PreviousMonth+" to "+cmp.CurrentMonth,
			[]string{"Branch", "Current", "Previous", "Change %"}, len(cmp.Branches), func(i int) []string {
				b := cmp.Branches[i]
				return []string{b.Branch, money(b.Current), money(b.Previous), fmt.Sprintf("%.1f", b.ChangePct)}
			})

		p.table("Top cities", []string{"City", "Transactions"}, len(report.TopCities), func(i int) []string {
			c := report.TopCities[i]
			return []string{c.City, fmt.Sprint(c.Count)}
		})

		p.counts("Age bands", "Band", report.AgeBands)
		p.counts("Loan types", "Type", report.LoanTypes)
		p.counts("Card types", "Type", report.CardTypes)

		p.table("LTV distribution", []string{"Bucket", "Customers"}, len(report.LTVHistogram), func(i int) []string {
			b := report.LTVHistogram[i]
			return []string{b.Label, fmt.Sprint(b.Count)}
		})

		p.table("Anomalies", []string{"Customer", "Transaction", "Amount", "Z-score"}, len(report.Anomalies), func(i int) []string {
			a := report.Anomalies[i]
			return []string{fmt.Sprint(a.Transaction.CustomerID), a.Transaction.TransactionID.String,
				money(a.Transaction.TransactionAmount), fmt.Sprintf("%.2f", a.ZScore)}
		})

		p.raw("</body></html>")
		return p.err
	})
}

// htmlWriter keeps the first write error so the component body reads linearly.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (p *htmlWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *htmlWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *htmlWriter) kpi(label, value string) {
	p.raw(`<div class="kpi">`)
	p.text(label)
	p.raw("<b>")
	p.text(value)
	p.raw("</b></div>")
}

func (p *htmlWriter) table(title string, head []string, n int, row func(int) []string) {
	p.raw("<h2>")
	p.text(title)
	p.raw("</h2>")
	if n == 0 {
		p.raw("<p>None</p>")
		return
	}
	p.raw("<table><tr>")
	for _, h := range head {
		p.raw("<th>")
		p.text(h)
		p.raw("</th>")
	}
	p.raw("</tr>")
	for i := 0; i < n; i++ {
		p.raw("<tr>")
		for _, cell := range row(i) {
			p.raw("<td>")
			p.text(cell)
			p.raw("</td>")
		}
		p.raw("</tr>")
	}
	p.raw("</table>")
}

// counts renders a label/count map sorted by label.
func (p *htmlWriter) counts(title, label string, m map[string]int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p.table(title, []string{label, "Count"}, len(keys), func(i int) []string {
		return []string{keys[i], fmt.Sprint(m[keys[i]])}
	})
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
