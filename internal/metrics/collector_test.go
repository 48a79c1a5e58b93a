package metrics

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewCollector(t *testing.T) {
	collector := NewCollector()

	if collector == nil {
		t.Fatal("NewCollector() returned nil")
	}

	if collector.counters == nil {
		t.Fatal("counters not initialized")
	}

	snap := collector.Snapshot()
	if snap.Documents != 0 || snap.Messages != 0 {
		t.Errorf("Expected zero counters, got %+v", snap)
	}

	if snap.StartTime.IsZero() {
		t.Error("Expected start time to be set")
	}
}

func TestDocumentCounters(t *testing.T) {
	collector := NewCollector()

	collector.DocumentProcessed()
	collector.DocumentProcessed()
	collector.DocumentSkipped()
	collector.DocumentFailed()

	snap := collector.Snapshot()
	if snap.Documents != 2 {
		t.Errorf("Expected 2 documents, got %d", snap.Documents)
	}
	if snap.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", snap.Skipped)
	}
	if snap.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", snap.Failed)
	}

	if rate := snap.SkipRate(); rate < 33.3 || rate > 33.4 {
		t.Errorf("Expected skip rate ~33.3, got %f", rate)
	}
}

func TestTemplateCounters(t *testing.T) {
	collector := NewCollector()

	collector.TemplateExtracted(4, 1)
	collector.TemplateExtracted(6, 0)
	collector.TemplateRegistered()

	snap := collector.Snapshot()
	if snap.Templates != 2 {
		t.Errorf("Expected 2 templates, got %d", snap.Templates)
	}
	if snap.Messages != 10 {
		t.Errorf("Expected 10 messages, got %d", snap.Messages)
	}
	if snap.Warnings != 1 {
		t.Errorf("Expected 1 warning, got %d", snap.Warnings)
	}
	if snap.Registrations != 1 {
		t.Errorf("Expected 1 registration, got %d", snap.Registrations)
	}
	if rate := snap.WarningRate(); rate != 10.0 {
		t.Errorf("Expected warning rate 10.0, got %f", rate)
	}
}

func TestRatesWithNoWork(t *testing.T) {
	snap := NewCollector().Snapshot()

	if snap.WarningRate() != 0.0 {
		t.Errorf("Expected warning rate 0.0, got %f", snap.WarningRate())
	}
	if snap.SkipRate() != 0.0 {
		t.Errorf("Expected skip rate 0.0, got %f", snap.SkipRate())
	}
}

func TestBeginTracksInFlight(t *testing.T) {
	collector := NewCollector()

	end1 := collector.Begin()
	end2 := collector.Begin()
	end3 := collector.Begin()
	time.Sleep(time.Millisecond)
	end3()
	end2()
	end1()

	end := collector.Begin()
	end()

	snap := collector.Snapshot()
	if snap.MaxInFlight != 3 {
		t.Errorf("Expected max in flight 3, got %d", snap.MaxInFlight)
	}
	if snap.Busy <= 0 {
		t.Errorf("Expected busy time to be recorded, got %v", snap.Busy)
	}
	if collector.inFlight != 0 {
		t.Errorf("Expected nothing in flight, got %d", collector.inFlight)
	}
}

func TestNamedCounters(t *testing.T) {
	collector := NewCollector()

	collector.Increment("invalid_json")
	collector.Increment("invalid_json")
	collector.Increment("embedded_seed")

	counters := collector.Counters()
	if counters["invalid_json"] != 2 {
		t.Errorf("Expected invalid_json 2, got %d", counters["invalid_json"])
	}
	if counters["embedded_seed"] != 1 {
		t.Errorf("Expected embedded_seed 1, got %d", counters["embedded_seed"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	collector := NewCollector()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			end := collector.Begin()
			defer end()
			collector.DocumentProcessed()
			collector.TemplateExtracted(2, 0)
			collector.Increment("shared")
		}()
	}
	wg.Wait()

	snap := collector.Snapshot()
	if snap.Documents != workers {
		t.Errorf("Expected %d documents, got %d", workers, snap.Documents)
	}
	if snap.Messages != 2*workers {
		t.Errorf("Expected %d messages, got %d", 2*workers, snap.Messages)
	}
	if snap.MaxInFlight < 1 || snap.MaxInFlight > workers {
		t.Errorf("Unexpected max in flight %d", snap.MaxInFlight)
	}
	if collector.Counters()["shared"] != workers {
		t.Errorf("Expected shared counter %d, got %d", workers, collector.Counters()["shared"])
	}
}

func TestReset(t *testing.T) {
	collector := NewCollector()
	collector.DocumentProcessed()
	collector.TemplateExtracted(3, 1)
	collector.Increment("x")
	before := collector.Snapshot().StartTime

	time.Sleep(time.Millisecond)
	collector.Reset()

	snap := collector.Snapshot()
	if snap.Documents != 0 || snap.Messages != 0 || snap.Warnings != 0 {
		t.Errorf("Expected counters reset, got %+v", snap)
	}
	if len(collector.Counters()) != 0 {
		t.Error("Expected named counters reset")
	}
	if !snap.StartTime.After(before) {
		t.Error("Expected start time to move forward")
	}
}

func TestSnapshotJSON(t *testing.T) {
	collector := NewCollector()
	collector.DocumentProcessed()

	data, err := json.Marshal(collector.Snapshot())
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}

	for _, field := range []string{`"documents":1`, `"max_in_flight"`, `"start_time"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("Expected %s in %s", field, data)
		}
	}
}
