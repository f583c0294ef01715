package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"webscada.dev/scada-core-service/pkg/subscription"
)

var maxDevices int = 1000
var subscribers int = 50
var observeFor time.Duration = 30 * time.Second
var httpHostPort string = "127.0.0.1:1080"

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

func main() {
	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	projectID := createProject()
	fmt.Printf("created project %v\n", projectID)

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	deviceIDs := make([]string, maxDevices)
	tagIDs := make([]string, maxDevices)
	wg := sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			deviceIDs[i], tagIDs[i] = seedDevice(projectID, i)
			fmt.Printf("\rseeded device %v", i)
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rseeded %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices*3)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			startCollection(deviceIDs[i])
			fmt.Printf("\rstarted collection on device %v", i)
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rstarted collection on %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices)/usedTime.Seconds(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), observeFor)
	defer cancel()

	managers := make([]*subscription.Manager, subscribers)
	wg = sync.WaitGroup{}
	for i := 0; i < subscribers; i++ {
		i := i
		managers[i] = subscription.NewManager(projectID, &subscription.WSDialer{
			BaseURL: fmt.Sprintf("ws://%s", httpHostPort),
		}, subscription.Options{})
		wg.Add(1)
		go func() {
			managers[i].Run(ctx)
			wg.Done()
		}()
	}

	fmt.Printf("attached %v realtime subscribers, observing for %v\n", subscribers, observeFor)

	// Poll random current values while the fan-out runs, as a dashboard
	// would.
	reads := 0
	for ctx.Err() == nil {
		readCurrentValue(tagIDs[rnd.Intn(len(tagIDs))])
		reads++
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < subscribers; i++ {
		covered := 0
		for _, tagID := range tagIDs {
			if _, ok := managers[i].LatestValue(tagID); ok {
				covered++
			}
		}
		if covered == len(tagIDs) {
			fresh++
		}
	}

	fmt.Printf(
		"observation done: reads=%v, subscribers with full tag coverage=%v/%v\n",
		reads, fresh, subscribers,
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			stopCollection(deviceIDs[i])
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"stopped collection on %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices)/usedTime.Seconds(),
	)
}

func postJSON(path string, payload map[string]any) map[string]any {
	jsonData, _ := json.Marshal(payload)
	resp, err := http.Post(fmt.Sprintf("http://%s%s", httpHostPort, path), "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		panic(fmt.Sprintf("POST %s: status %v, body %s", path, resp.StatusCode, body))
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		panic(err)
	}
	return out
}

func createProject() string {
	out := postJSON("/projects", map[string]any{"name": "device1k benchmark"})
	return out["ID"].(string)
}

func seedDevice(projectID string, index int) (deviceID, tagID string) {
	device := postJSON(fmt.Sprintf("/projects/%s/devices", projectID), map[string]any{
		"name": fmt.Sprintf("bench-device-%04d", index),
		"type": "simulation",
	})
	deviceID = device["ID"].(string)

	patterns := []string{"random", "sine", "ramp", "step"}
	tag := postJSON(fmt.Sprintf("/devices/%s/tags", deviceID), map[string]any{
		"name":               "value",
		"type":               "analog",
		"simulation":         true,
		"pattern":            patterns[index%len(patterns)],
		"min":                0.0,
		"max":                100.0,
		"noise":              2.0,
		"update_interval_ms": 1000,
	})
	tagID = tag["ID"].(string)

	postJSON(fmt.Sprintf("/tags/%s/rules", tagID), map[string]any{
		"name":       "high value",
		"comparator": ">",
		"threshold":  95.0,
		"severity":   "warning",
		"enabled":    true,
	})
	return deviceID, tagID
}

func startCollection(deviceID string) {
	postJSON(fmt.Sprintf("/devices/%s/collection/start", deviceID), map[string]any{})
}

func stopCollection(deviceID string) {
	postJSON(fmt.Sprintf("/devices/%s/collection/stop", deviceID), map[string]any{})
}

func readCurrentValue(tagID string) {
	resp, err := http.Get(fmt.Sprintf("http://%s/tags/%s/current", httpHostPort, tagID))
	if err != nil {
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	defer resp.Body.Close()
	// 404 is fine right after start, the first tick may not have landed
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		fmt.Printf("\nresponse status code != 200: %v\n", resp.StatusCode)
	}
}
