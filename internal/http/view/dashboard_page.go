package view

import (
	"bytes"
	"html/template"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
)

// DashboardPageData provides the dynamic fields required by the dashboard template.
type DashboardPageData struct {
	Title       string
	Stats       model.GlobalStats
	Events      []model.AdEvent
	GeneratedAt time.Time
}

var dashboardFuncs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return "–"
		}
		return *s
	},
	"stamp": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04:05")
	},
}

var dashboardPageTmpl = template.Must(template.New("dashboard_page").Funcs(dashboardFuncs).Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{if .Title}}{{.Title}}{{else}}Monetag events{{end}}</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			padding: 32px 16px;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.wrap { width: min(1100px, 96vw); margin: 0 auto; }
		h1 { font-size: 1.5rem; margin-bottom: 6px; }
		p { color: var(--muted); margin-top: 0; }
		.counters {
			display: grid;
			grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
			gap: 16px;
			margin: 24px 0;
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 20px;
		}
		.label {
			font-size: 0.82rem;
			text-transform: uppercase;
			letter-spacing: 0.08em;
			color: var(--muted);
			margin-bottom: 8px;
		}
		.value { font-size: 2rem; font-weight: 600; color: var(--accent); }
		table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
		th, td { text-align: left; padding: 10px 8px; border-bottom: 1px solid var(--border); }
		th { color: var(--muted); font-weight: 500; }
		.empty { color: var(--muted); text-align: center; padding: 24px; }
		.meta { margin-top: 16px; font-size: 0.85rem; color: rgba(231, 236, 255, 0.65); }
	</style>
</head>
<body>
	<div class="wrap">
		<h1>Ad events</h1>
		<p>Impressions and clicks reported by the ad network.</p>

		<div class="counters">
			<div class="card"><div class="label">Impressions</div><div class="value">{{.Stats.Impressions}}</div></div>
			<div class="card"><div class="label">Clicks</div><div class="value">{{.Stats.Clicks}}</div></div>
			<div class="card"><div class="label">Unique users</div><div class="value">{{.Stats.UniqueUsers}}</div></div>
		</div>

		<div class="card">
			<div class="label">Latest events</div>
			<table>
				<thead>
					<tr><th>Time (UTC)</th><th>Type</th><th>Zone</th><th>User</th><th>Email</th><th>Revenue</th><th>Country</th></tr>
				</thead>
				<tbody>
				{{range .Events}}
					<tr>
						<td>{{stamp .CreatedAt}}</td>
						<td>{{.EventType}}</td>
						<td>{{.ZoneID}}</td>
						<td>{{deref .TelegramID}}</td>
						<td>{{deref .SubID2}}</td>
						<td>{{deref .Revenue}}</td>
						<td>{{deref .Country}}</td>
					</tr>
				{{else}}
					<tr><td class="empty" colspan="7">No events recorded yet.</td></tr>
				{{end}}
				</tbody>
			</table>
		</div>

		<div class="meta">Generated {{stamp .GeneratedAt}} UTC</div>
	</div>
</body>
</html>
`))

// RenderDashboardPage expands the dashboard template with the provided data.
func RenderDashboardPage(data DashboardPageData) (string, error) {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	var buf bytes.Buffer
	if err := dashboardPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
