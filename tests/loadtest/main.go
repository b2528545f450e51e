package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numUsers     = 200
	batchSize    = 5
)

var phrases = []string{
	"love the new rolling stock on the blue line",
	"great service this morning, right on time",
	"good connection at central station",
	"the usual commute, nothing special",
	"waiting for the 8:15 as always",
	"bad delays on the red line again",
	"awful crowding at the platform tonight",
	"terrible, stuck between stations for an hour",
	"signal failure near the depot, everything stopped",
	"smoke reported at the crossing, trains halted",
}

var categories = []string{"", "Delays", "Station Facilities", "Staff", "Safety"}

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

var tidCounter atomic.Int64

func main() {
	fmt.Println("=== RailPulse Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Users: %d | Batch size: %d\n\n", numUsers, batchSize)

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

	// Phase 1: Seed data with ingest batches
	fmt.Println("\n--- Phase 1: Seeding data (POST /ingest) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doIngest(rng)
	})

	// Phase 2: Mixed read/write load
	fmt.Println("\n--- Phase 2: Mixed load (60% write, 40% read) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.45:
			return doIngest(rng)
		case r < 0.60:
			return doClassify(rng)
		case r < 0.78:
			return doGetTweets(rng)
		case r < 0.90:
			return doGetAlerts(rng)
		default:
			return doGetAnalytics(rng)
		}
	})

	// Phase 3: Read-heavy load
	fmt.Println("\n--- Phase 3: Read-heavy load (10% write, 90% read) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doIngest(rng)
		case r < 0.45:
			return doGetTweets(rng)
		case r < 0.65:
			return doGetAlerts(rng)
		case r < 0.85:
			return doGetAnalytics(rng)
		default:
			return doClassify(rng)
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

func doIngest(rng *rand.Rand) result {
	tweets := make([]map[string]interface{}, batchSize)
	now := time.Now().UTC()
	for i := range tweets {
		t := map[string]interface{}{
			"tid":       fmt.Sprintf("lt_%d", tidCounter.Add(1)),
			"user":      fmt.Sprintf("user_%d", rng.Intn(numUsers)),
			"tweet":     phrases[rng.Intn(len(phrases))],
			"timestamp": now.Add(-time.Duration(rng.Intn(3600)) * time.Second).Format(time.RFC3339),
		}
		if cat := categories[rng.Intn(len(categories))]; cat != "" {
			t["category"] = cat
		}
		tweets[i] = t
	}

	data, _ := json.Marshal(map[string]interface{}{"tweets": tweets})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/ingest", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /ingest", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /ingest", resp.StatusCode, lat, resp.StatusCode != 201}
}

func doClassify(rng *rand.Rand) result {
	data, _ := json.Marshal(map[string]string{
		"tweet": phrases[rng.Intn(len(phrases))],
	})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/classify", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /classify", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /classify", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetTweets(rng *rand.Rand) result {
	url := baseURL + "/tweets?perPage=50"
	if rng.Float64() < 0.5 {
		url += fmt.Sprintf("&sentiment=%d", rng.Intn(5)+1)
	}
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /tweets", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /tweets", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetAlerts(rng *rand.Rand) result {
	url := baseURL + "/alerts"
	if rng.Float64() < 0.3 {
		url += "?status=resolved"
	}
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /alerts", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /alerts", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetAnalytics(rng *rand.Rand) result {
	ranges := []string{"24h", "7d", "30d"}
	url := fmt.Sprintf("%s/analytics?range=%s", baseURL, ranges[rng.Intn(len(ranges))])
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /analytics", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /analytics", resp.StatusCode, lat, resp.StatusCode != 200}
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
