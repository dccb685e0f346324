package resources

import (
	"fmt"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
)

// NoParent is the parent index of the root bone.
const NoParent = -1

/**
 * @brief A node of a skeleton. Parent and children are referenced by index
 * into the owning skeleton's bone list.
 */
type Bone struct {
	Name            string
	Index           int
	ParentIndex     int
	ChildrenIndices []int
	/** @brief The bind pose, relative to the parent bone. */
	ToParentTransform math.Mat4
	/** @brief The inverse bind matrix, from model space into bone space. */
	OffsetTransform math.Mat4
}

/**
 * @brief A validated bone tree. Bones are stored flat in index order and
 * the skeleton is immutable once created.
 */
type Skeleton struct {
	bones []*Bone
	root  int
}

// NewSkeleton validates the bone list and returns the skeleton built on it.
// bones[i].Index must equal i, exactly one bone (rootIndex) has no parent,
// children lists must agree with the parent indices and every bone has to
// be reachable from the root.
func NewSkeleton(bones []*Bone, rootIndex int) (*Skeleton, error) {
	count := len(bones)
	if count == 0 {
		return nil, fmt.Errorf("no bones: %w", core.ErrInvalidSkeleton)
	}
	if rootIndex < 0 || rootIndex >= count {
		return nil, fmt.Errorf("root index %d out of range [0, %d): %w", rootIndex, count, core.ErrInvalidSkeleton)
	}

	for i, bone := range bones {
		if bone == nil {
			return nil, fmt.Errorf("bone %d is missing: %w", i, core.ErrInvalidSkeleton)
		}
		if bone.Index != i {
			return nil, fmt.Errorf("bone %q at slot %d has index %d: %w", bone.Name, i, bone.Index, core.ErrInvalidSkeleton)
		}
		switch {
		case bone.ParentIndex == NoParent:
			if i != rootIndex {
				return nil, fmt.Errorf("bone %q has no parent but the root is %d: %w", bone.Name, rootIndex, core.ErrInvalidSkeleton)
			}
		case bone.ParentIndex < 0 || bone.ParentIndex >= count:
			return nil, fmt.Errorf("bone %q has parent index %d out of range: %w", bone.Name, bone.ParentIndex, core.ErrInvalidSkeleton)
		case i == rootIndex:
			return nil, fmt.Errorf("root bone %q has parent %d: %w", bone.Name, bone.ParentIndex, core.ErrInvalidSkeleton)
		}
		for _, child := range bone.ChildrenIndices {
			if child < 0 || child >= count || bones[child].ParentIndex != i {
				return nil, fmt.Errorf("bone %q lists child %d which is not its child: %w", bone.Name, child, core.ErrInvalidSkeleton)
			}
		}
	}

	// Every non-root bone is listed by its parent exactly once and the walk
	// from the root visits each bone once, so the hierarchy is a tree.
	visited := make([]bool, count)
	stack := []int{rootIndex}
	seen := 0
	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[index] {
			return nil, fmt.Errorf("bone %q is listed twice: %w", bones[index].Name, core.ErrInvalidSkeleton)
		}
		visited[index] = true
		seen++
		stack = append(stack, bones[index].ChildrenIndices...)
	}
	if seen != count {
		for i, ok := range visited {
			if !ok {
				return nil, fmt.Errorf("bone %q is not reachable from the root: %w", bones[i].Name, core.ErrInvalidSkeleton)
			}
		}
	}

	return &Skeleton{bones: bones, root: rootIndex}, nil
}

func (s *Skeleton) Root() *Bone {
	return s.bones[s.root]
}

func (s *Skeleton) RootIndex() int {
	return s.root
}

func (s *Skeleton) BoneCount() int {
	return len(s.bones)
}

// Bone returns the bone at index, or nil when the index is out of range.
func (s *Skeleton) Bone(index int) *Bone {
	if index < 0 || index >= len(s.bones) {
		return nil
	}
	return s.bones[index]
}

// Bones returns the bones in index order. The slice must not be modified.
func (s *Skeleton) Bones() []*Bone {
	return s.bones
}

// Parent returns the parent of bone, nil for the root.
func (s *Skeleton) Parent(bone *Bone) *Bone {
	return s.Bone(bone.ParentIndex)
}

func (s *Skeleton) Children(bone *Bone) []*Bone {
	children := make([]*Bone, 0, len(bone.ChildrenIndices))
	for _, index := range bone.ChildrenIndices {
		children = append(children, s.bones[index])
	}
	return children
}

// Walk visits the bones depth first, parents before their children, in the
// order the children are listed.
func (s *Skeleton) Walk(fn func(bone *Bone)) {
	var visit func(index int)
	visit = func(index int) {
		bone := s.bones[index]
		fn(bone)
		for _, child := range bone.ChildrenIndices {
			visit(child)
		}
	}
	visit(s.root)
}
