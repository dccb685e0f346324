package math

// NewTransform creates a transform from a position, rotation and scale.
func NewTransform(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	return &Transform{
		Position: position,
		Rotation: rotation,
		Scale:    scale,
		Local:    NewMat4Identity(),
		IsDirty:  true,
	}
}

// NewTransformIdentity creates a transform at the origin with no rotation
// and unit scale.
func NewTransformIdentity() *Transform {
	return NewTransform(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.IsDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.SetPosition(t.Position.Add(translation))
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
	t.IsDirty = true
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.SetRotation(t.Rotation.Mul(rotation))
}

/**
 * @brief Returns the local matrix Scale * Rotation * Translation, rebuilding
 * it only when a component changed. A nil transform is the identity.
 */
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.IsDirty {
		s := NewMat4Scale(t.Scale)
		r := t.Rotation.ToMat4()
		t.Local = s.Mul(r).Mul(NewMat4Translation(t.Position))
		t.IsDirty = false
	}
	return t.Local
}

/**
 * @brief Returns the local matrix composed with every parent up the chain.
 */
func (t *Transform) GetWorld() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	local := t.GetLocal()
	if t.Parent == nil {
		return local
	}
	return local.Mul(t.Parent.GetWorld())
}
