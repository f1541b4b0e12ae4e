package scene

// defaultScene is a skinned column twisted in place, a vase squeezed by a
// sphere, a grid and a crate, all pressed under one plane.
const defaultScene = `
meshes:
  - {name: column, shape: cylinder, size: [0.5, 2, 0.5], segments: 32, rows: 64}
  - name: vase
    shape: lathe
    segments: 32
    rows: 48
    profile: [[0, 0.25], [0.5, 0.5], [1.2, 0.3], [1.6, 0.35]]
  - {name: floor, shape: grid, size: [6, 0, 6], segments: 96}
  - {name: crate, shape: cube, size: [0.8, 0.8, 0.8], segments: 16}
renderers:
  - name: column
    mesh: column
    transform: {position: [-1.5, 1, 0]}
    rig:
      bones:
        - {name: base, transform: {position: [0, -1, 0]}}
        - name: top
          parent: base
          transform: {position: [0, 2, 0]}
          keys:
            - {time: 0, rotation: [0, 0, 0]}
            - {time: 1, rotation: [0, 0, 20]}
            - {time: 2, rotation: [0, 0, 0]}
      blend_shapes:
        - name: breathe
          scale: [1.3, 1, 1.3]
          keys: [{time: 0, weight: 0}, {time: 1, weight: 100}, {time: 2, weight: 0}]
  - {name: vase, mesh: vase, transform: {position: [1.5, 0.8, 0]}}
  - {name: floor, mesh: floor}
  - {name: crate, mesh: crate, transform: {position: [0, 0.4, 1.5], rotation: [0, 30, 0]}}
deformers:
  - kind: twist
    transform: {position: [-1.5, 0, 0]}
    params: {rotations: 0.25, falloff: 2}
  - kind: sphere
    transform: {position: [1.5, 0.8, 0]}
    params: {radius: 0.35, falloff: 0.1}
  - kind: plane
    params: {above: 1.6, below: -0.1}
`

// Default builds the scene used when no scene file is given.
func Default() (*Scene, error) {
	return Parse([]byte(defaultScene))
}
