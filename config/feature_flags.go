package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles with gradual rollout. Rollout cohorts
// are assigned by hashing the student ID, so a student stays in the same
// cohort across restarts.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Per-student overrides for testing and support.
	studentOverrides map[string]map[string]bool
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// RolloutPercent enables the feature for a stable fraction of students
	// (0-100).
	RolloutPercent int
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	// StudentID selects the rollout cohort.
	StudentID string
}

// Predefined feature flag names.
const (
	// FeatureSyncContestHistory controls the supplemental contest read
	// during a sync.
	FeatureSyncContestHistory = "sync.contest_history"

	// FeatureSyncScheduled controls the periodic bulk re-sync job.
	FeatureSyncScheduled = "sync.scheduled"

	// FeatureDashboardHeatmap controls the 90-day activity heatmap.
	FeatureDashboardHeatmap = "dashboard.heatmap"

	// FeatureDashboardRatingDistribution controls the rating histogram.
	FeatureDashboardRatingDistribution = "dashboard.rating_distribution"

	// FeatureCacheDashboard controls read-through caching of dashboard reads.
	FeatureCacheDashboard = "cache.dashboard"
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:         make(map[string]*Feature),
		studentOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	defaults := []Feature{
		{
			Name:           FeatureSyncContestHistory,
			Description:    "Fetch contest history during sync",
			Enabled:        true,
			RolloutPercent: 100,
		},
		{
			Name:           FeatureSyncScheduled,
			Description:    "Periodic bulk re-sync of all active students",
			Enabled:        true,
			RolloutPercent: 100,
		},
		{
			Name:           FeatureDashboardHeatmap,
			Description:    "90-day activity heatmap on the dashboard",
			Enabled:        true,
			RolloutPercent: 100,
		},
		{
			Name:           FeatureDashboardRatingDistribution,
			Description:    "Solved-problem rating histogram on the dashboard",
			Enabled:        true,
			RolloutPercent: 100,
		},
		{
			Name:           FeatureCacheDashboard,
			Description:    "Read-through caching of dashboard queries",
			Enabled:        true,
			RolloutPercent: 100,
		},
	}

	for i := range defaults {
		f := defaults[i]
		ff.features[f.Name] = &f
	}
}

// loadFromEnvironment applies env overrides of the form
// CODETRACK_FEATURE_SYNC_CONTEST_HISTORY=false and
// CODETRACK_FEATURE_SYNC_CONTEST_HISTORY_ROLLOUT=25.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		key := featureNameToEnvKey(name)

		if val := os.Getenv(key); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = enabled
			}
		}

		if val := os.Getenv(key + "_ROLLOUT"); val != "" {
			if percent, err := strconv.Atoi(val); err == nil && percent >= 0 && percent <= 100 {
				feature.RolloutPercent = percent
			}
		}
	}
}

func featureNameToEnvKey(name string) string {
	key := strings.NewReplacer(".", "_", "-", "_").Replace(name)
	return "CODETRACK_FEATURE_" + strings.ToUpper(key)
}

// IsEnabled evaluates a feature for the given context. A nil context skips
// rollout targeting and answers for the fully-rolled-out population.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if ctx != nil {
		if overrides, ok := ff.studentOverrides[ctx.StudentID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok || !feature.Enabled {
		return false
	}

	if feature.RolloutPercent >= 100 {
		return true
	}
	if ctx == nil || ctx.StudentID == "" {
		return false
	}

	return inRollout(ctx.StudentID, featureName, feature.RolloutPercent)
}

// inRollout assigns a stable bucket in [0,100) from the student and feature.
func inRollout(studentID, featureName string, percent int) bool {
	h := fnv.New32a()
	_, _ = h.Write([]byte(studentID))
	_, _ = h.Write([]byte(featureName))
	return int(h.Sum32()%100) < percent
}

// SetStudentOverride forces a feature on or off for one student.
func (ff *FeatureFlags) SetStudentOverride(studentID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if ff.studentOverrides[studentID] == nil {
		ff.studentOverrides[studentID] = make(map[string]bool)
	}
	ff.studentOverrides[studentID][featureName] = enabled
}

// ClearStudentOverrides removes all overrides for one student.
func (ff *FeatureFlags) ClearStudentOverrides(studentID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.studentOverrides, studentID)
}

// SetRolloutPercent adjusts a feature's rollout at runtime.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) bool {
	if percent < 0 || percent > 100 {
		return false
	}

	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}
	feature.RolloutPercent = percent
	return true
}

// GetAllFeatures returns a snapshot of all features.
func (ff *FeatureFlags) GetAllFeatures() map[string]Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	snapshot := make(map[string]Feature, len(ff.features))
	for name, feature := range ff.features {
		snapshot[name] = *feature
	}
	return snapshot
}
