package pipeline

import (
	"maps"
	"slices"

	"github.com/samber/lo"

	"github.com/matzehuels/mavenbuild/pkg/artifact"
)

// Passes lists the archive kinds in extraction priority order.
var Passes = []artifact.Kind{artifact.KindDar, artifact.KindEar, artifact.KindWar, artifact.KindJar}

// Step is one extraction unit: a primary archive, optionally followed by the
// same-key jar extracted into the same module directory.
type Step struct {
	Pass    artifact.Kind `json:"pass"`
	Primary artifact.File `json:"primary"`

	// Merge is the same-key jar extracted after the primary archive.
	Merge *artifact.File `json:"merge,omitempty"`

	// POM is the external manifest attached to a standalone jar.
	POM *artifact.File `json:"pom,omitempty"`

	// Shadowed lists lower-priority packagings of the same module that are
	// not extracted.
	Shadowed []artifact.File `json:"shadowed,omitempty"`
}

// Key returns the logical key shared by every artifact of the step.
func (s Step) Key() string { return s.Primary.LogicalKey() }

// ModuleDir returns the step's destination relative to the content root.
func (s Step) ModuleDir() string { return s.Primary.ModuleDir() }

// Plan is the ordered result of resolving an index.
type Plan struct {
	Steps      []Step                `json:"steps"`
	UnusedPOMs []artifact.File       `json:"unused_poms,omitempty"`
	Unkeyable  []artifact.Unkeyable  `json:"unkeyable,omitempty"`
	Counts     map[artifact.Kind]int `json:"counts"`
}

// Pass returns the steps of one pass in execution order.
func (p *Plan) Pass(kind artifact.Kind) []Step {
	return lo.Filter(p.Steps, func(s Step, _ int) bool { return s.Pass == kind })
}

// Shadowed returns every artifact dropped in favor of a higher-priority
// packaging.
func (p *Plan) Shadowed() []artifact.File {
	return lo.FlatMap(p.Steps, func(s Step, _ int) []artifact.File { return s.Shadowed })
}

// remaining tracks the keys not yet consumed by an earlier pass. Passes never
// modify their input; each returns a fresh copy.
type remaining struct {
	ear, war, jar, pom map[string]struct{}
}

func newRemaining(idx *artifact.Index) remaining {
	return remaining{
		ear: keySet(idx.Keys(artifact.KindEar)),
		war: keySet(idx.Keys(artifact.KindWar)),
		jar: keySet(idx.Keys(artifact.KindJar)),
		pom: keySet(idx.Keys(artifact.KindPOM)),
	}
}

func keySet(keys []string) map[string]struct{} {
	return lo.SliceToMap(keys, func(k string) (string, struct{}) { return k, struct{}{} })
}

func (r remaining) clone() remaining {
	return remaining{
		ear: maps.Clone(r.ear),
		war: maps.Clone(r.war),
		jar: maps.Clone(r.jar),
		pom: maps.Clone(r.pom),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}

// take removes key from set and returns the indexed file, if present.
func take(idx *artifact.Index, kind artifact.Kind, set map[string]struct{}, key string) (artifact.File, bool) {
	if _, ok := set[key]; !ok {
		return artifact.File{}, false
	}
	delete(set, key)
	return idx.Get(kind, key)
}

// mergeJar attaches the same-key jar to s and consumes it.
func mergeJar(idx *artifact.Index, rem remaining, s *Step) {
	if jar, ok := take(idx, artifact.KindJar, rem.jar, s.Key()); ok {
		s.Merge = &jar
	}
}

// shadow consumes the same-key artifact of kind and records it on s.
func shadow(idx *artifact.Index, kind artifact.Kind, set map[string]struct{}, s *Step) {
	if f, ok := take(idx, kind, set, s.Key()); ok {
		s.Shadowed = append(s.Shadowed, f)
	}
}

// darPass extracts every dar. A same-key jar is merged; same-key ears and
// wars are shadowed.
func darPass(idx *artifact.Index, in remaining) ([]Step, remaining) {
	rem := in.clone()
	var steps []Step
	for _, key := range idx.Keys(artifact.KindDar) {
		f, _ := idx.Get(artifact.KindDar, key)
		s := Step{Pass: artifact.KindDar, Primary: f}
		mergeJar(idx, rem, &s)
		shadow(idx, artifact.KindEar, rem.ear, &s)
		shadow(idx, artifact.KindWar, rem.war, &s)
		steps = append(steps, s)
	}
	return steps, rem
}

// earPass extracts the remaining ears. A same-key jar is merged; a same-key
// war is shadowed.
func earPass(idx *artifact.Index, in remaining) ([]Step, remaining) {
	rem := in.clone()
	var steps []Step
	for _, key := range sortedKeys(in.ear) {
		f, _ := idx.Get(artifact.KindEar, key)
		delete(rem.ear, key)
		s := Step{Pass: artifact.KindEar, Primary: f}
		mergeJar(idx, rem, &s)
		shadow(idx, artifact.KindWar, rem.war, &s)
		steps = append(steps, s)
	}
	return steps, rem
}

// warPass extracts the remaining wars, merging a same-key jar.
func warPass(idx *artifact.Index, in remaining) ([]Step, remaining) {
	rem := in.clone()
	var steps []Step
	for _, key := range sortedKeys(in.war) {
		f, _ := idx.Get(artifact.KindWar, key)
		delete(rem.war, key)
		s := Step{Pass: artifact.KindWar, Primary: f}
		mergeJar(idx, rem, &s)
		steps = append(steps, s)
	}
	return steps, rem
}

// jarPass extracts the remaining jars on their own, attaching a same-key
// external pom when one exists.
func jarPass(idx *artifact.Index, in remaining) ([]Step, remaining) {
	rem := in.clone()
	var steps []Step
	for _, key := range sortedKeys(in.jar) {
		f, _ := idx.Get(artifact.KindJar, key)
		delete(rem.jar, key)
		s := Step{Pass: artifact.KindJar, Primary: f}
		if p, ok := take(idx, artifact.KindPOM, rem.pom, key); ok {
			s.POM = &p
		}
		steps = append(steps, s)
	}
	return steps, rem
}

// Resolve runs the four passes over idx and returns the extraction plan.
func Resolve(idx *artifact.Index) *Plan {
	rem := newRemaining(idx)
	plan := &Plan{Counts: idx.Counts(), Unkeyable: idx.Unkeyable()}

	for _, pass := range []func(*artifact.Index, remaining) ([]Step, remaining){darPass, earPass, warPass, jarPass} {
		var steps []Step
		steps, rem = pass(idx, rem)
		plan.Steps = append(plan.Steps, steps...)
	}

	for _, key := range sortedKeys(rem.pom) {
		f, _ := idx.Get(artifact.KindPOM, key)
		plan.UnusedPOMs = append(plan.UnusedPOMs, f)
	}
	return plan
}
