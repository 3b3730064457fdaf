package gpu

// Pool owns a group of resources with a shared lifetime. Release frees them
// in reverse acquisition order and leaves the pool empty and reusable.
type Pool struct {
	items []Resource
}

// Add takes ownership of r. Nil resources are ignored.
func (p *Pool) Add(r Resource) {
	if r == nil {
		return
	}
	p.items = append(p.items, r)
}

// Len returns the number of owned resources.
func (p *Pool) Len() int {
	return len(p.items)
}

// Release frees every owned resource.
func (p *Pool) Release() {
	for i := len(p.items) - 1; i >= 0; i-- {
		p.items[i].Release()
	}
	p.items = p.items[:0]
}

// Target allocates a render target owned by the pool.
func (p *Pool) Target(dev Device, desc TargetDesc) (Target, error) {
	t, err := dev.NewTarget(desc)
	if err != nil {
		return nil, err
	}
	p.Add(t)
	return t, nil
}

// Texture allocates a texture owned by the pool.
func (p *Pool) Texture(dev Device, desc TextureDesc, data []float32) (Texture, error) {
	t, err := dev.NewTexture(desc, data)
	if err != nil {
		return nil, err
	}
	p.Add(t)
	return t, nil
}

// Mesh allocates a mesh owned by the pool.
func (p *Pool) Mesh(dev Device, desc MeshDesc) (Mesh, error) {
	m, err := dev.NewMesh(desc)
	if err != nil {
		return nil, err
	}
	p.Add(m)
	return m, nil
}

// Program compiles a program owned by the pool.
func (p *Pool) Program(dev Device, label, vertexSrc, fragmentSrc string) (Program, error) {
	prog, err := dev.NewProgram(label, vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	p.Add(prog)
	return prog, nil
}
