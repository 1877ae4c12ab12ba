package attendance

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoData means the subject has no recorded classes yet, so there is
	// nothing to project from.
	ErrNoData = errors.New("attendance: no records for subject")
	// ErrInvalidCounts means the caller passed corrupted counts (negative,
	// or more present marks than classes). The projector rejects instead of
	// clamping.
	ErrInvalidCounts = errors.New("attendance: invalid present/total counts")
	// ErrUnreachableTarget means target >= 100%, which the projection
	// inequality cannot solve (a student who has missed a class can never
	// reach 100%).
	ErrUnreachableTarget = errors.New("attendance: target percentage unreachable")
	// ErrInvalidTarget means target <= 0.
	ErrInvalidTarget = errors.New("attendance: target percentage must be positive")
)

// ClassesToRecover returns the minimum number of consecutive future classes
// that must all be attended for the percentage to reach target.
//
// Solving (present + x) / (total + x) >= target/100 for x gives
// x >= (target*total - 100*present) / (100 - target); the result is that
// bound rounded up, clamped at zero when the target is already met.
func ClassesToRecover(present, total int, target float64) (int, error) {
	if present < 0 || total < 0 || present > total {
		return 0, fmt.Errorf("%w: present=%d total=%d", ErrInvalidCounts, present, total)
	}
	if total == 0 {
		return 0, ErrNoData
	}
	if target <= 0 {
		return 0, ErrInvalidTarget
	}
	if target >= 100 {
		return 0, ErrUnreachableTarget
	}
	needed := math.Ceil((target*float64(total) - 100*float64(present)) / (100 - target))
	if needed < 0 {
		return 0, nil
	}
	return int(needed), nil
}

// Project returns the percentage the subject would end at if all remaining
// classes are attended.
func Project(present, total, remaining int) (float64, error) {
	if present < 0 || total < 0 || present > total || remaining < 0 {
		return 0, fmt.Errorf("%w: present=%d total=%d remaining=%d", ErrInvalidCounts, present, total, remaining)
	}
	if total+remaining == 0 {
		return 0, ErrNoData
	}
	return round2(float64(present+remaining) / float64(total+remaining) * 100), nil
}

// SafeAbsences returns how many of the remaining classes can still be missed
// while ending at or above the threshold.
func SafeAbsences(present, total, remaining int) (int, error) {
	if present < 0 || total < 0 || present > total || remaining < 0 {
		return 0, fmt.Errorf("%w: present=%d total=%d remaining=%d", ErrInvalidCounts, present, total, remaining)
	}
	if total == 0 {
		return 0, ErrNoData
	}
	projectedTotal := total + remaining
	minPresent := int(math.Ceil(float64(projectedTotal) * Threshold / 100))
	spare := present + remaining - minPresent
	if spare < 0 {
		return 0, nil
	}
	return spare, nil
}

// Scenario is one named recovery projection.
type Scenario struct {
	Name          string  `json:"name"`
	Target        float64 `json:"target"`
	ClassesNeeded int     `json:"classes_needed"`
	Message       string  `json:"message"`
}

// Plan is the full recovery plan for one subject.
type Plan struct {
	SubjectName       string     `json:"subject_name"`
	CurrentPercentage float64    `json:"current_percentage"`
	Scenarios         []Scenario `json:"scenarios"`
}

// planTargets are the named targets every recovery plan covers.
var planTargets = []struct {
	target float64
	name   string
}{
	{75, "Minimum Safe"},
	{85, "Safe Zone"},
}

// BuildRecoveryPlan produces the named scenarios for a subject. Returns
// ErrNoData when the subject has no classes yet.
func BuildRecoveryPlan(subjectName string, present, total int) (Plan, error) {
	if present < 0 || total < 0 || present > total {
		return Plan{}, fmt.Errorf("%w: present=%d total=%d", ErrInvalidCounts, present, total)
	}
	if total == 0 {
		return Plan{}, ErrNoData
	}
	current := round2(float64(present) / float64(total) * 100)
	plan := Plan{SubjectName: subjectName, CurrentPercentage: current}
	for _, t := range planTargets {
		needed, err := ClassesToRecover(present, total, t.target)
		if err != nil {
			return Plan{}, err
		}
		sc := Scenario{Name: t.name, Target: t.target, ClassesNeeded: needed}
		if needed == 0 {
			sc.Message = fmt.Sprintf("Already at %.2f%%, no extra classes needed to stay above %.0f%%", current, t.target)
		} else {
			sc.Message = fmt.Sprintf("Attend the next %d classes to reach %.0f%%", needed, t.target)
		}
		plan.Scenarios = append(plan.Scenarios, sc)
	}
	return plan, nil
}
