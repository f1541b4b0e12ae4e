package mesh

import "github.com/Faultbox/meshwarp/internal/jobs"

// ZeroNormals clears the normal accumulator. It touches nothing Bake writes,
// so it can run alongside it.
func (m *DeformingMesh) ZeroNormals(s *jobs.Scheduler, deps ...jobs.Handle) jobs.Handle {
	return s.ScheduleParallel(len(m.Normals), m.opts.BatchSize, func(start, end int) {
		clear(m.Normals[start:end])
	}, deps...)
}

// UpdateNormals recomputes vertex normals from the deformed triangles. Each
// face normal contributes 1/valence to its vertices and the sum is
// renormalized. Vertices used by no triangle keep their source normal.
//
// deps must include both the last vertex write and ZeroNormals.
func (m *DeformingMesh) UpdateNormals(s *jobs.Scheduler, deps ...jobs.Handle) jobs.Handle {
	faces := s.ScheduleParallel(len(m.faceNormals), m.opts.NormalBatchSize, m.faceNormalRange, deps...)
	return s.ScheduleParallel(len(m.Normals), m.opts.BatchSize, m.gatherNormalRange, faces)
}

func (m *DeformingMesh) faceNormalRange(start, end int) {
	idx := m.source.Indices
	for f := start; f < end; f++ {
		v0 := m.Vertices[idx[f*3]]
		v1 := m.Vertices[idx[f*3+1]]
		v2 := m.Vertices[idx[f*3+2]]
		m.faceNormals[f] = v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	}
}

func (m *DeformingMesh) gatherNormalRange(start, end int) {
	for v := start; v < end; v++ {
		inv := m.invValence[v]
		if inv == 0 {
			if v < len(m.source.Normals) {
				m.Normals[v] = m.source.Normals[v]
			}
			continue
		}
		sum := m.Normals[v]
		for _, f := range m.adjFaces[m.adjStart[v]:m.adjStart[v+1]] {
			sum = sum.Add(m.faceNormals[f].Scale(inv))
		}
		m.Normals[v] = sum.Normalize()
	}
}
