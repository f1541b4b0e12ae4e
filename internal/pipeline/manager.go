// Package pipeline drives the per-frame deformation of a set of meshes by an
// ordered list of deformers.
//
// A frame is a task graph on a jobs.Scheduler: every mesh is baked, moved
// into each deformer's frame in turn, deformed, moved back and finished with
// normals and bounds. Meshes never wait on each other except where a
// deformer needs an aggregate over all of them. The frame goroutine blocks
// once, at the end of the frame, before committing results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshwarp/internal/config"
	"github.com/Faultbox/meshwarp/internal/deformer"
	"github.com/Faultbox/meshwarp/internal/jobs"
	"github.com/Faultbox/meshwarp/internal/kernel"
	"github.com/Faultbox/meshwarp/internal/logger"
	"github.com/Faultbox/meshwarp/internal/mesh"
	"github.com/Faultbox/meshwarp/internal/profile"
	"github.com/Faultbox/meshwarp/pkg/math"
)

var (
	// ErrNilDeformer is returned when adding a nil deformer.
	ErrNilDeformer = errors.New("nil deformer")
	// ErrDuplicateDeformer is returned when adding a deformer already in the list.
	ErrDuplicateDeformer = errors.New("deformer already added")
)

// Manager owns the deforming meshes and the ordered deformer list.
//
// Thread safety: Manager is driven from a single goroutine. Tasks it
// schedules touch only the meshes and per-frame scratch it owns.
type Manager struct {
	cfg   config.PipelineConfig
	sched *jobs.Scheduler
	log   *zap.Logger
	timer *profile.Timer
	now   func() time.Time

	deformers []deformer.Deformer
	meshes    []*mesh.DeformingMesh
	// tracked is the renderer list the meshes were built from, including
	// renderers whose source was rejected.
	tracked []mesh.Renderer

	initialized bool
	enabled     bool
	editMode    bool
	lastCheck   time.Time

	// Frame scratch, sized to meshes.
	out     []math.Mat4
	handles []jobs.Handle
	zero    []jobs.Handle
	reduce  []jobs.Handle
	slots   []deformer.Stats
}

// New creates a manager scheduling on sched.
func New(cfg config.PipelineConfig, sched *jobs.Scheduler) *Manager {
	return &Manager{
		cfg:   cfg,
		sched: sched,
		log:   logger.Named("pipeline"),
		now:   time.Now,
	}
}

// SetTimer installs a section timer. nil turns profiling off.
func (m *Manager) SetTimer(t *profile.Timer) { m.timer = t }

// SetEditMode marks the host as editing rather than playing. Update does
// nothing in edit mode unless UpdateInEditMode is set.
func (m *Manager) SetEditMode(editing bool) { m.editMode = editing }

// Meshes returns the current deforming meshes.
func (m *Manager) Meshes() []*mesh.DeformingMesh {
	return slices.Clone(m.meshes)
}

// Enabled reports whether the render meshes are attached.
func (m *Manager) Enabled() bool { return m.enabled }

// Update runs one frame: it keeps the mesh set in step with renderers and
// then deforms. With no active deformer the meshes are released.
func (m *Manager) Update(ctx context.Context, renderers []mesh.Renderer) error {
	if m.editMode && !m.cfg.UpdateInEditMode {
		return nil
	}
	// HasWork reads clamped parameters.
	for _, d := range m.deformers {
		d.Validate()
	}
	if !m.HasActiveDeformer() {
		m.Dispose()
		return nil
	}

	switch {
	case !m.initialized:
		if err := m.Rebuild(ctx, renderers); err != nil {
			return err
		}
		m.lastCheck = m.now()
	case m.cfg.RenderersChangedCheckCooldown >= 0 && m.now().Sub(m.lastCheck) >= m.cfg.RenderersChangedCheckCooldown:
		m.lastCheck = m.now()
		if m.renderersChanged(renderers) {
			m.log.Debug("renderers changed", zap.Int("renderers", len(renderers)))
			if err := m.Rebuild(ctx, renderers); err != nil {
				return err
			}
		} else {
			m.Enable()
		}
	}

	m.Deform()
	return nil
}

// eligible reports whether r should get a deforming mesh at all.
func eligible(r mesh.Renderer) bool {
	if r == nil || !r.Active() {
		return false
	}
	src := r.Source()
	return src != nil && len(src.Vertices) > 0
}

// renderersChanged compares the eligible renderers with the tracked set by
// count and identity.
func (m *Manager) renderersChanged(renderers []mesh.Renderer) bool {
	i := 0
	for _, r := range renderers {
		if !eligible(r) {
			continue
		}
		if i >= len(m.tracked) || m.tracked[i] != r {
			return true
		}
		i++
	}
	return i != len(m.tracked)
}

// Rebuild replaces the mesh set with one deforming mesh per eligible
// renderer. Sources that fail validation are skipped; an index overflow
// aborts the rebuild and leaves the manager empty.
func (m *Manager) Rebuild(ctx context.Context, renderers []mesh.Renderer) error {
	m.Dispose()

	var candidates []mesh.Renderer
	for _, r := range renderers {
		if eligible(r) {
			candidates = append(candidates, r)
			continue
		}
		if r != nil {
			m.log.Debug("skipping renderer", zap.String("renderer", r.Name()), zap.Bool("active", r.Active()))
		}
	}

	opts := mesh.Options{BatchSize: m.cfg.BatchSize, NormalBatchSize: m.cfg.NormalBatchSize}
	built := make([]*mesh.DeformingMesh, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.sched.Workers())
	for i, r := range candidates {
		i, r := i, r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dm, err := mesh.New(r, opts)
			switch {
			case errors.Is(err, mesh.ErrInvalidSource):
				m.log.Debug("skipping invalid source", zap.String("renderer", r.Name()), zap.Error(err))
				return nil
			case err != nil:
				return fmt.Errorf("building %s: %w", r.Name(), err)
			}
			built[i] = dm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, dm := range built {
			if dm != nil {
				dm.Dispose()
			}
		}
		return err
	}

	m.meshes = slices.DeleteFunc(built, func(dm *mesh.DeformingMesh) bool { return dm == nil })
	m.tracked = candidates
	m.initialized = true
	m.resizeScratch()

	m.log.Info("rebuilt meshes",
		zap.Int("meshes", len(m.meshes)),
		zap.Int("skipped", len(renderers)-len(m.meshes)),
	)
	return nil
}

func (m *Manager) resizeScratch() {
	n := len(m.meshes)
	m.out = make([]math.Mat4, n)
	m.handles = make([]jobs.Handle, n)
	m.zero = make([]jobs.Handle, n)
	m.reduce = make([]jobs.Handle, n)
	m.slots = make([]deformer.Stats, n)
}

// Enable attaches every render mesh. Calling it again is a no-op.
func (m *Manager) Enable() {
	for _, dm := range m.meshes {
		dm.Enable()
	}
	if !m.enabled && len(m.meshes) > 0 {
		m.enabled = true
		m.log.Info("enabled", zap.Int("meshes", len(m.meshes)))
	}
}

// Disable restores the renderers' original meshes and keeps the buffers.
// Calling it again is a no-op.
func (m *Manager) Disable() {
	if !m.enabled {
		return
	}
	for _, dm := range m.meshes {
		dm.Disable()
	}
	m.enabled = false
	m.log.Info("disabled", zap.Int("meshes", len(m.meshes)))
}

// Dispose disables and releases every mesh. The next Update rebuilds.
// Calling it again is a no-op.
func (m *Manager) Dispose() {
	if !m.initialized && len(m.meshes) == 0 {
		return
	}
	m.Disable()
	for _, dm := range m.meshes {
		dm.Dispose()
	}
	m.meshes = nil
	m.tracked = nil
	m.initialized = false
	m.resizeScratch()
}

// Deform runs one frame over the current meshes and blocks until it is
// committed.
func (m *Manager) Deform() {
	if len(m.meshes) == 0 {
		return
	}
	s := m.sched

	stop := m.timer.Start("schedule")
	for i, dm := range m.meshes {
		dm.UpdateRoot()
		m.handles[i] = dm.Bake(s)
		m.out[i] = dm.BakeSpace()
	}
	if m.cfg.UpdateNormals {
		for i, dm := range m.meshes {
			m.zero[i] = dm.ZeroNormals(s)
		}
	}
	m.Enable()

	for _, d := range m.deformers {
		d.Validate()
		base := d.Common()
		if !base.Enabled {
			continue
		}
		if !d.HasWork() {
			m.log.Debug("deformer has no work",
				zap.String("deformer", base.Name),
				zap.String("kind", string(d.Kind())),
			)
			continue
		}

		l2w := base.LocalToWorld()
		w2l := l2w.Inverse()
		for i, dm := range m.meshes {
			m.handles[i] = dm.Transform(s, w2l.Mul(dm.LocalToWorld()).Mul(m.out[i]), m.handles[i])
			m.out[i] = dm.WorldToLocal().Mul(l2w)
		}
		m.apply(d)
	}

	for i, dm := range m.meshes {
		h := dm.Transform(s, m.out[i], m.handles[i])
		post := []jobs.Handle{h}
		if m.cfg.UpdateNormals {
			post = append(post, dm.UpdateNormals(s, h, m.zero[i]))
		}
		if m.cfg.UpdateBounds {
			post = append(post, dm.UpdateBounds(s, h))
		}
		m.handles[i] = s.Combine(post...)
	}
	stop()

	stop = m.timer.Start("complete")
	jobs.CompleteAll(m.handles)
	stop()

	stop = m.timer.Start("commit")
	for _, dm := range m.meshes {
		dm.Commit(m.cfg.UpdateBounds)
	}
	stop()

	m.timer.EndFrame()
}

// apply schedules d's kernel on every mesh. Deformers that need an
// aggregate get a reduction over all meshes first: one task per mesh fills
// its own slot, and a single merge task prepares the kernel the apply
// batches read.
func (m *Manager) apply(d deformer.Deformer) {
	s := m.sched
	agg := d.Aggregate()
	if agg == deformer.AggregateNone {
		fn := d.Prepare(deformer.Stats{})
		for i, dm := range m.meshes {
			m.handles[i] = dm.Apply(s, fn, m.handles[i])
		}
		return
	}

	dist := math.Vec3.Length
	if dd, ok := d.(deformer.Distancer); ok {
		dist = dd.Distance
	}
	for i, dm := range m.meshes {
		dm := dm
		slot := &m.slots[i]
		if agg == deformer.AggregateFarthest {
			m.reduce[i] = s.Schedule(func() {
				slot.Farthest = dm.Farthest(dist)
			}, m.handles[i])
		} else {
			m.reduce[i] = s.Schedule(func() {
				slot.Min, slot.Max = dm.MinMax()
			}, m.handles[i])
		}
	}

	fn := new(kernel.Func)
	slots := m.slots
	merged := s.Schedule(func() {
		*fn = d.Prepare(mergeStats(slots, agg))
	}, m.reduce...)

	for i, dm := range m.meshes {
		m.handles[i] = dm.ApplyDeferred(s, fn, merged)
	}
}

// mergeStats folds per-mesh slots into one Stats.
func mergeStats(slots []deformer.Stats, agg deformer.Aggregate) deformer.Stats {
	var out deformer.Stats
	if agg == deformer.AggregateFarthest {
		for _, st := range slots {
			out.Farthest = max(out.Farthest, st.Farthest)
		}
		return out
	}
	out.Min, out.Max = math.EmptyMinMax()
	for _, st := range slots {
		out.Min = out.Min.Min(st.Min)
		out.Max = out.Max.Max(st.Max)
	}
	return out
}

// HasActiveDeformer reports whether any deformer is enabled and has work.
func (m *Manager) HasActiveDeformer() bool {
	return slices.ContainsFunc(m.deformers, deformer.Active)
}

// Deformers returns the deformer list in application order.
func (m *Manager) Deformers() []deformer.Deformer {
	return slices.Clone(m.deformers)
}

// AddDeformer appends d to the end of the list.
func (m *Manager) AddDeformer(d deformer.Deformer) error {
	if d == nil {
		return ErrNilDeformer
	}
	if slices.Contains(m.deformers, d) {
		return fmt.Errorf("%w: %s", ErrDuplicateDeformer, d.Common().Name)
	}
	m.deformers = append(m.deformers, d)
	return nil
}

// AddDeformers appends each of ds in order. Every rejected deformer is
// reported in the returned error; the others are still added.
func (m *Manager) AddDeformers(ds ...deformer.Deformer) error {
	var err error
	for _, d := range ds {
		err = multierr.Append(err, m.AddDeformer(d))
	}
	return err
}

// RemoveDeformer removes d and reports whether it was in the list.
func (m *Manager) RemoveDeformer(d deformer.Deformer) bool {
	i := slices.Index(m.deformers, d)
	if i < 0 {
		return false
	}
	m.deformers = slices.Delete(m.deformers, i, i+1)
	return true
}

// RemoveDeformers removes each of ds and returns how many were found.
func (m *Manager) RemoveDeformers(ds ...deformer.Deformer) int {
	n := 0
	for _, d := range ds {
		if m.RemoveDeformer(d) {
			n++
		}
	}
	return n
}

// RemoveAllDeformers empties the list.
func (m *Manager) RemoveAllDeformers() {
	m.deformers = nil
}
