// Benchmark tool for testing Shrike against labeled screening data.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/names.csv -url http://localhost:8080
//
// This tool:
//   1. Reads a labeled name dataset (name, kind, dob, country, is_match)
//   2. Sends each record to Shrike for screening
//   3. Compares Shrike's verdict (hit / clear) with the actual labels
//   4. Calculates precision, recall, F1-score, and confusion matrix
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LabeledRecord represents a row from the benchmark dataset.
type LabeledRecord struct {
	Name        string
	Kind        string
	DateOfBirth string
	Country     string
	IsMatch     bool
}

// ScreenNameRequest is the Shrike API request format.
type ScreenNameRequest struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind,omitempty"`
	DateOfBirth string         `json:"dateOfBirth,omitempty"`
	Country     string         `json:"country,omitempty"`
	Options     *ScreenOptions `json:"options,omitempty"`
}

// ScreenOptions carries the per-request screening knobs.
type ScreenOptions struct {
	Threshold     float64 `json:"threshold,omitempty"`
	AllowDemoData bool    `json:"allowDemoData,omitempty"`
}

// ScreenNameResponse is the Shrike API response format.
type ScreenNameResponse struct {
	Result struct {
		ID      string `json:"id"`
		Status  string `json:"status"` // "clear" or "potential_match"
		Matches []struct {
			Score float64 `json:"score"`
		} `json:"matches"`
	} `json:"result"`
	IsDemoData bool `json:"isDemoData"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	TruePositives  int64 // Listed names flagged
	FalsePositives int64 // Clean names flagged
	TrueNegatives  int64 // Clean names cleared
	FalseNegatives int64 // Listed names cleared (missed hits!)

	TotalProcessed int64
	TotalListed    int64
	TotalClean     int64
	TotalErrors    int64

	ProcessingTimeMs int64
}

func main() {
	// Parse flags
	csvPath := flag.String("csv", "", "Path to labeled names CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Shrike base URL")
	tenantID := flag.String("tenant", "benchmark-test", "Tenant ID for requests")
	limit := flag.Int("limit", 10000, "Maximum records to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	threshold := flag.Float64("threshold", 0.0, "Screening threshold override (0 = server default)")
	verbose := flag.Bool("verbose", false, "Print each record result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/names.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("+---------------------------------------------------------------+")
	fmt.Println("|            SHRIKE BENCHMARK - Watchlist Screening             |")
	fmt.Println("+---------------------------------------------------------------+")
	fmt.Printf("\nCSV File:    %s\n", *csvPath)
	fmt.Printf("Shrike URL:  %s\n", *baseURL)
	fmt.Printf("Tenant ID:   %s\n", *tenantID)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Limit:       %d\n", *limit)
	fmt.Printf("Threshold:   %.2f\n", *threshold)
	fmt.Println()

	// Check Shrike is running
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Shrike not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Shrike is running:")
		fmt.Println("  cd shrike && go run cmd/shrike/main.go")
		os.Exit(1)
	}
	fmt.Println("Shrike is healthy")

	// Read labeled data
	fmt.Printf("\nReading labeled names from %s...\n", *csvPath)
	records, err := readLabeledCSV(*csvPath, *limit)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d records\n", len(records))

	// Count listed vs clean
	listedCount := 0
	for _, rec := range records {
		if rec.IsMatch {
			listedCount++
		}
	}
	fmt.Printf("  - Listed: %d (%.2f%%)\n", listedCount, 100*float64(listedCount)/float64(len(records)))
	fmt.Printf("  - Clean:  %d (%.2f%%)\n", len(records)-listedCount, 100*float64(len(records)-listedCount)/float64(len(records)))

	// Run benchmark
	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(records, *baseURL, *tenantID, *workers, *threshold, *verbose)
	duration := time.Since(startTime)

	// Print results
	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func readLabeledCSV(path string, limit int) ([]LabeledRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Map column indices
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	get := func(record []string, col string) string {
		idx, ok := colIndex[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var records []LabeledRecord

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		name := get(record, "name")
		if name == "" {
			continue
		}

		records = append(records, LabeledRecord{
			Name:        name,
			Kind:        get(record, "kind"),
			DateOfBirth: get(record, "dob"),
			Country:     get(record, "country"),
			IsMatch:     get(record, "is_match") == "1",
		})

		if limit > 0 && len(records) >= limit {
			break
		}
	}

	return records, nil
}

func runBenchmark(records []LabeledRecord, baseURL, tenantID string, numWorkers int, threshold float64, verbose bool) *Metrics {
	metrics := &Metrics{}

	// Create work channel
	work := make(chan LabeledRecord, 100)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for rec := range work {
				start := time.Now()
				result, err := screenName(client, baseURL, tenantID, threshold, rec)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s -> %v\n", rec.Name, err)
					}
					continue
				}

				// Track actual labels
				if rec.IsMatch {
					atomic.AddInt64(&metrics.TotalListed, 1)
				} else {
					atomic.AddInt64(&metrics.TotalClean, 1)
				}

				// Calculate confusion matrix
				predicted := result.Result.Status != "clear"
				actual := rec.IsMatch

				if predicted && actual {
					atomic.AddInt64(&metrics.TruePositives, 1)
				} else if predicted && !actual {
					atomic.AddInt64(&metrics.FalsePositives, 1)
				} else if !predicted && !actual {
					atomic.AddInt64(&metrics.TrueNegatives, 1)
				} else { // !predicted && actual
					atomic.AddInt64(&metrics.FalseNegatives, 1)
				}

				if verbose {
					status := "ok "
					if (predicted && !actual) || (!predicted && actual) {
						status = "BAD"
					}
					topScore := 0.0
					if len(result.Result.Matches) > 0 {
						topScore = result.Result.Matches[0].Score
					}
					name := rec.Name
					if len(name) > 24 {
						name = name[:24]
					}
					fmt.Printf("%s %-24s | Listed: %-5v | Shrike: %-15s (%.2f)\n",
						status,
						name,
						rec.IsMatch,
						result.Result.Status,
						topScore,
					)
				}
			}
		}()
	}

	// Send work
	for _, rec := range records {
		work <- rec
	}
	close(work)

	// Wait for completion
	wg.Wait()

	return metrics
}

func screenName(client *http.Client, baseURL, tenantID string, threshold float64, rec LabeledRecord) (*ScreenNameResponse, error) {
	req := ScreenNameRequest{
		Name:        rec.Name,
		Kind:        rec.Kind,
		DateOfBirth: rec.DateOfBirth,
		Country:     rec.Country,
	}
	if threshold > 0 {
		req.Options = &ScreenOptions{Threshold: threshold}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/screen/name", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", tenantID)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result ScreenNameResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n+---------------------------------------------------------------+")
	fmt.Println("|                      BENCHMARK RESULTS                        |")
	fmt.Println("+---------------------------------------------------------------+")

	fmt.Printf("\nDATASET STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Total Listed:     %d\n", m.TotalListed)
	fmt.Printf("   Total Clean:      %d\n", m.TotalClean)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	fmt.Printf("\nCONFUSION MATRIX\n")
	fmt.Println("                         Predicted")
	fmt.Println("                     HIT        CLEAR")
	fmt.Println("              +----------+----------+")
	fmt.Printf("   Actual  L  | %8d | %8d |  (TP, FN)\n", m.TruePositives, m.FalseNegatives)
	fmt.Println("              +----------+----------+")
	fmt.Printf("           C  | %8d | %8d |  (FP, TN)\n", m.FalsePositives, m.TrueNegatives)
	fmt.Println("              +----------+----------+")

	// Calculate metrics
	precision := float64(0)
	if m.TruePositives+m.FalsePositives > 0 {
		precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}

	recall := float64(0)
	if m.TruePositives+m.FalseNegatives > 0 {
		recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}

	f1 := float64(0)
	if precision+recall > 0 {
		f1 = 2 * (precision * recall) / (precision + recall)
	}

	accuracy := float64(0)
	total := m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives
	if total > 0 {
		accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(total)
	}

	fmt.Printf("\nDETECTION METRICS\n")
	fmt.Printf("   Precision:  %.4f  (of hits, how many were actually listed)\n", precision)
	fmt.Printf("   Recall:     %.4f  (of listed names, how many did we catch)\n", recall)
	fmt.Printf("   F1-Score:   %.4f  (harmonic mean of precision & recall)\n", f1)
	fmt.Printf("   Accuracy:   %.4f  (overall correct predictions)\n", accuracy)

	// Detection rate analysis
	fmt.Printf("\nDETECTION ANALYSIS\n")
	if m.TotalListed > 0 {
		detectionRate := float64(m.TruePositives) / float64(m.TotalListed) * 100
		missRate := float64(m.FalseNegatives) / float64(m.TotalListed) * 100
		fmt.Printf("   Listed Detected:   %d / %d (%.2f%%)\n", m.TruePositives, m.TotalListed, detectionRate)
		fmt.Printf("   Listed Missed:     %d / %d (%.2f%%)\n", m.FalseNegatives, m.TotalListed, missRate)
	}
	if m.TotalClean > 0 {
		falseAlarmRate := float64(m.FalsePositives) / float64(m.TotalClean) * 100
		fmt.Printf("   False Alarms:      %d / %d (%.2f%%)\n", m.FalsePositives, m.TotalClean, falseAlarmRate)
	}

	fmt.Printf("\nPERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		nps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f names/sec\n", nps)
	}

	// Interpretation
	fmt.Printf("\nINTERPRETATION\n")
	if recall >= 0.9 {
		fmt.Println("   Excellent recall - catching most listed names")
	} else if recall >= 0.7 {
		fmt.Println("   Good recall - but missing some listed names")
	} else if recall >= 0.5 {
		fmt.Println("   Moderate recall - significant misses")
	} else {
		fmt.Println("   Poor recall - most listed names are being missed!")
	}

	if precision >= 0.5 {
		fmt.Println("   Good precision - hits are meaningful")
	} else if precision >= 0.2 {
		fmt.Println("   Low precision - many false alarms")
	} else {
		fmt.Println("   Very low precision - mostly false alarms")
	}

	fmt.Println()
}
