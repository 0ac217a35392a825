package test

import (
	"fmt"
	"html/template"
	"os"
	"time"
)

// TestSuite represents a collection of test results
type TestSuite struct {
	Name        string       `json:"name"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	TotalTests  int          `json:"total_tests"`
	PassedTests int          `json:"passed_tests"`
	FailedTests int          `json:"failed_tests"`
	Results     []TestResult `json:"results"`
}

// TestResult represents a single test result
type TestResult struct {
	TestName        string                 `json:"test_name"`
	Category        string                 `json:"category"`
	Description     string                 `json:"description"`
	Passed          bool                   `json:"passed"`
	ExpectedOutcome string                 `json:"expected_outcome"`
	ActualOutcome   string                 `json:"actual_outcome"`
	Details         map[string]interface{} `json:"details"`
	Duration        time.Duration          `json:"duration"`
	Error           string                 `json:"error,omitempty"`
}

// CategoryGroup groups test results by category
type CategoryGroup struct {
	Category string
	Tests    []TestResult
}

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Name}} - Test Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            background: #1a5c4f;
            padding: 20px;
            color: #333;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 10px;
            box-shadow: 0 12px 40px rgba(0,0,0,0.35);
            overflow: hidden;
        }

        .header {
            background: #1a5c4f;
            color: white;
            padding: 36px;
            text-align: center;
        }

        .header h1 { font-size: 2.2em; margin-bottom: 8px; }
        .header .subtitle { font-size: 1.05em; opacity: 0.85; }

        .summary {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 16px;
            padding: 32px;
            background: #f5f7f6;
            border-bottom: 2px solid #e3e8e6;
        }

        .summary-card {
            background: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 6px rgba(0,0,0,0.08);
            text-align: center;
        }

        .summary-card .label {
            font-size: 0.85em;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 1px;
            margin-bottom: 8px;
        }

        .summary-card .value { font-size: 2.2em; font-weight: bold; color: #333; }
        .summary-card.passed .value { color: #28a745; }
        .summary-card.failed .value { color: #dc3545; }
        .summary-card.total .value { color: #1a5c4f; }
        .summary-card.duration .value { font-size: 1.6em; color: #6c757d; }

        .filters { padding: 20px 32px; background: #fff; border-bottom: 1px solid #e3e8e6; }

        .filter-btn {
            border: 1px solid #1a5c4f;
            background: white;
            color: #1a5c4f;
            padding: 7px 14px;
            margin-right: 8px;
            border-radius: 16px;
            cursor: pointer;
            font-size: 0.9em;
        }

        .filter-btn.active { background: #1a5c4f; color: white; }

        .tests { padding: 32px; }

        .category-header {
            font-size: 1.3em;
            color: #1a5c4f;
            margin: 24px 0 12px;
            padding-bottom: 6px;
            border-bottom: 2px solid #e3e8e6;
        }

        .test-card {
            border: 1px solid #e3e8e6;
            border-left: 4px solid #28a745;
            border-radius: 6px;
            padding: 18px;
            margin-bottom: 14px;
        }

        .test-card.failed { border-left-color: #dc3545; }

        .test-header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 10px;
        }

        .test-name { font-weight: 600; font-size: 1.05em; }

        .test-badge {
            padding: 3px 10px;
            border-radius: 12px;
            font-size: 0.8em;
            font-weight: 600;
        }

        .test-badge.passed { background: #d4edda; color: #155724; }
        .test-badge.failed { background: #f8d7da; color: #721c24; }

        .duration { color: #6c757d; font-size: 0.85em; margin-left: 8px; }
        .test-description { color: #555; font-size: 0.95em; margin-bottom: 12px; }

        .test-outcomes {
            display: grid;
            grid-template-columns: 1fr 1fr;
            gap: 12px;
        }

        .outcome-box {
            background: #f5f7f6;
            border-radius: 5px;
            padding: 10px 12px;
        }

        .outcome-label {
            font-size: 0.75em;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 4px;
        }

        .outcome-value { font-size: 0.9em; }

        .test-details { margin-top: 12px; font-size: 0.9em; }
        .test-details summary { cursor: pointer; color: #1a5c4f; }

        .detail-item { display: flex; padding: 4px 0 0 16px; }
        .detail-key { color: #6c757d; margin-right: 8px; }

        .error-box {
            margin-top: 12px;
            background: #f8d7da;
            color: #721c24;
            border-radius: 5px;
            padding: 10px 12px;
            font-size: 0.9em;
        }

        .footer {
            background: #f5f7f6;
            padding: 24px;
            text-align: center;
            color: #6c757d;
            font-size: 0.9em;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Name}}</h1>
            <div class="subtitle">{{.StartTime.Format "2006-01-02 15:04:05"}} · {{.TotalTests}} tests</div>
        </div>

        <div class="summary">
            <div class="summary-card total">
                <div class="label">Total</div>
                <div class="value">{{.TotalTests}}</div>
            </div>
            <div class="summary-card passed">
                <div class="label">Passed</div>
                <div class="value">{{.PassedTests}}</div>
            </div>
            <div class="summary-card failed">
                <div class="label">Failed</div>
                <div class="value">{{.FailedTests}}</div>
            </div>
            <div class="summary-card duration">
                <div class="label">Pass Rate</div>
                <div class="value">{{PassRate .PassedTests .TotalTests}}%</div>
            </div>
        </div>

        <div class="filters">
            <button class="filter-btn active" onclick="filterTests('all')">All Tests</button>
            <button class="filter-btn" onclick="filterTests('passed')">Passed Only</button>
            <button class="filter-btn" onclick="filterTests('failed')">Failed Only</button>
            <button class="filter-btn" onclick="filterTests('Normalization')">Normalization</button>
            <button class="filter-btn" onclick="filterTests('Recommendation')">Recommendation</button>
            <button class="filter-btn" onclick="filterTests('Analysis')">Analysis</button>
            <button class="filter-btn" onclick="filterTests('API')">API</button>
            <button class="filter-btn" onclick="filterTests('Persistence')">Persistence</button>
        </div>

        <div class="tests">
            {{range GroupByCategory .Results}}
            <div class="test-category" data-category="{{.Category}}">
                <h2 class="category-header">{{.Category}}</h2>
                {{range .Tests}}
                <div class="test-card {{if .Passed}}passed{{else}}failed{{end}}" data-status="{{if .Passed}}passed{{else}}failed{{end}}">
                    <div class="test-header">
                        <span class="test-name">{{.TestName}}</span>
                        <span>
                            <span class="test-badge {{if .Passed}}passed{{else}}failed{{end}}">
                                {{if .Passed}}Passed{{else}}Failed{{end}}
                            </span>
                            <span class="duration">{{FormatDuration .Duration}}</span>
                        </span>
                    </div>

                    <div class="test-description">{{.Description}}</div>

                    <div class="test-outcomes">
                        <div class="outcome-box">
                            <div class="outcome-label">Expected</div>
                            <div class="outcome-value">{{.ExpectedOutcome}}</div>
                        </div>
                        <div class="outcome-box">
                            <div class="outcome-label">Actual</div>
                            <div class="outcome-value">{{.ActualOutcome}}</div>
                        </div>
                    </div>

                    {{if .Details}}
                    <details class="test-details">
                        <summary>Details</summary>
                        {{range $key, $value := .Details}}
                        <div class="detail-item">
                            <div class="detail-key">{{$key}}:</div>
                            <div class="detail-value">{{FormatValue $value}}</div>
                        </div>
                        {{end}}
                    </details>
                    {{end}}

                    {{if .Error}}
                    <div class="error-box">
                        <strong>Error:</strong> {{.Error}}
                    </div>
                    {{end}}
                </div>
                {{end}}
            </div>
            {{end}}
        </div>

        <div class="footer">
            <p>Youth Finance Recommendation Integration Test Suite</p>
            <p style="margin-top: 8px;">
                Covering seed normalization, recommendation generation, portfolio analysis, and the HTTP API
            </p>
        </div>
    </div>

    <script>
        function filterTests(filter) {
            const cards = document.querySelectorAll('.test-card');
            const categories = document.querySelectorAll('.test-category');
            const buttons = document.querySelectorAll('.filter-btn');

            buttons.forEach(btn => {
                if (btn.textContent.includes(filter) || (filter === 'all' && btn.textContent.includes('All'))) {
                    btn.classList.add('active');
                } else {
                    btn.classList.remove('active');
                }
            });

            if (filter === 'all') {
                cards.forEach(card => card.style.display = 'block');
                categories.forEach(cat => cat.style.display = 'block');
                return;
            }

            if (filter === 'passed' || filter === 'failed') {
                cards.forEach(card => {
                    card.style.display = card.dataset.status === filter ? 'block' : 'none';
                });
                categories.forEach(cat => {
                    const visibleCards = cat.querySelectorAll('.test-card[data-status="' + filter + '"]');
                    cat.style.display = visibleCards.length > 0 ? 'block' : 'none';
                });
                return;
            }

            categories.forEach(cat => {
                cat.style.display = cat.dataset.category === filter ? 'block' : 'none';
            });
        }
    </script>
</body>
</html>
`

// GenerateHTMLReport generates an HTML test report
func GenerateHTMLReport(suite *TestSuite, filename string) error {
	funcMap := template.FuncMap{
		"FormatDuration": func(d time.Duration) string {
			if d < time.Millisecond {
				return fmt.Sprintf("%dµs", d.Microseconds())
			} else if d < time.Second {
				return fmt.Sprintf("%dms", d.Milliseconds())
			}
			return fmt.Sprintf("%.2fs", d.Seconds())
		},
		"PassRate": func(passed, total int) int {
			if total == 0 {
				return 0
			}
			return (passed * 100) / total
		},
		"GroupByCategory": func(results []TestResult) []CategoryGroup {
			groups := make(map[string][]TestResult)
			order := []string{}

			for _, result := range results {
				if _, exists := groups[result.Category]; !exists {
					order = append(order, result.Category)
				}
				groups[result.Category] = append(groups[result.Category], result)
			}

			categoryGroups := []CategoryGroup{}
			for _, category := range order {
				categoryGroups = append(categoryGroups, CategoryGroup{
					Category: category,
					Tests:    groups[category],
				})
			}
			return categoryGroups
		},
		"FormatValue": func(v interface{}) string {
			switch val := v.(type) {
			case []interface{}:
				if len(val) == 0 {
					return "[]"
				}
				result := "["
				for i, item := range val {
					if i > 0 {
						result += ", "
					}
					result += fmt.Sprintf("%v", item)
				}
				return result + "]"
			case []string:
				if len(val) == 0 {
					return "[]"
				}
				result := "["
				for i, item := range val {
					if i > 0 {
						result += ", "
					}
					result += fmt.Sprintf("%q", item)
				}
				return result + "]"
			default:
				return fmt.Sprintf("%v", val)
			}
		},
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, suite); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}
