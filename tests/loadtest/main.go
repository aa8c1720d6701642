package main

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:8080"
	numWorkers   = 50
	testDuration = 10 * time.Second
	dataset      = "pdi_estadisticas"
)

// Column names after normalization and a few substrings that should hit
// real cells in the PDI files. Adjust to the loaded dataset if needed.
var (
	groupColumns = []string{"region", "delito"}
	valueColumn  = "cantidad"
	bucketColumn = "ano"
	queries      = []string{"robo", "hurto", "metropolitana", "valpara", "lesiones", "zzz_no_match"}
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== pdistats Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Dataset: %s\n\n", numWorkers, testDuration, dataset)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: table browsing. Rows pages and schema, mostly cold keys.
	fmt.Println("\n--- Phase 1: Table browsing (rows/schema/datasets) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.60:
			return doGetRows(rng)
		case r < 0.80:
			return doGet("GET /schema", "/schema?ds="+dataset)
		default:
			return doGet("GET /datasets", "/datasets")
		}
	})

	// Phase 2: search load. Repeated queries, exercises the response cache.
	fmt.Println("\n--- Phase 2: Search load (search/export-sized pages) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.70:
			return doSearch(rng)
		case r < 0.90:
			return doGetRows(rng)
		default:
			return doGet("GET /summary", "/summary?ds="+dataset)
		}
	})

	// Phase 3: chart queries, the aggregate endpoints the dashboard hits.
	fmt.Println("\n--- Phase 3: Chart queries (top/ranking/series) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.35:
			return doTop(rng)
		case r < 0.60:
			return doRanking(rng)
		case r < 0.85:
			return doSeries(rng)
		default:
			return doSearch(rng)
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doGet(endpoint, path string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetRows(rng *rand.Rand) result {
	offset := rng.Intn(20) * 10
	path := fmt.Sprintf("/rows?ds=%s&offset=%d&limit=10", dataset, offset)
	return doGet("GET /rows", path)
}

func doSearch(rng *rand.Rand) result {
	col := groupColumns[rng.Intn(len(groupColumns))]
	q := queries[rng.Intn(len(queries))]
	path := fmt.Sprintf("/search?ds=%s&col=%s&q=%s&limit=50", dataset, col, url.QueryEscape(q))
	return doGet("GET /search", path)
}

func doTop(rng *rand.Rand) result {
	by := groupColumns[rng.Intn(len(groupColumns))]
	n := []int{5, 10, 20}[rng.Intn(3)]
	path := fmt.Sprintf("/top?ds=%s&by=%s&value=%s&n=%d", dataset, by, valueColumn, n)
	return doGet("GET /top", path)
}

func doRanking(rng *rand.Rand) result {
	by := groupColumns[rng.Intn(len(groupColumns))]
	path := fmt.Sprintf("/ranking?ds=%s&by=%s&value=%s", dataset, by, valueColumn)
	return doGet("GET /ranking", path)
}

func doSeries(rng *rand.Rand) result {
	path := fmt.Sprintf("/series?ds=%s&bucket=%s&value=%s", dataset, bucketColumn, valueColumn)
	if rng.Float64() < 0.5 {
		q := queries[rng.Intn(len(queries))]
		path += "&col=" + groupColumns[0] + "&eq=" + url.QueryEscape(q)
	}
	return doGet("GET /series", path)
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
