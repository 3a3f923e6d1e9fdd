package scene

import (
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/affinetransform"
	"whitted/contact"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/ray"
	"whitted/vmath/vec3"
	"whitted/xfstack"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func ts(cs []contact.Contact) []float64 {
	result := []float64{}
	for _, c := range cs {
		result = append(result, c.T)
	}
	sort.Float64s(result)
	return result
}

// twoSpheres puts unit spheres at x=-3 and x=+3, both 10 units down -z.
func twoSpheres() *Scene {
	red := material.Opaque(vec3.T{1, 0, 0})
	return &Scene{
		Root: &Group{
			NodeName:  "world",
			Transform: affinetransform.Translate(vec3.T{0, 0, -10}),
			Members: []Node{
				&Group{
					NodeName:  "left",
					Transform: affinetransform.Translate(vec3.T{-3, 0, 0}),
					Members:   []Node{&Leaf{NodeName: "ball", Kind: geometry.KindSphere, Material: red}},
				},
				&Group{
					NodeName:    "right",
					Transform:   affinetransform.Translate(vec3.T{3, 0, 0}),
					Members:     []Node{&Leaf{NodeName: "ball", Kind: geometry.KindSphere, Material: red}},
					GroupLights: []light.Light{light.Point(vec3.T{0, 5, 0})},
				},
			},
			GroupLights: []light.Light{light.Point(vec3.T{0, 0, 0})},
		},
	}
}

func TestRayCastThroughGroups(t *testing.T) {
	s := twoSpheres()
	stack := xfstack.New(affinetransform.Identity())

	left := s.RayCast(stack, ray.Ray{Point: vec3.T{-3, 0, 0}, Slope: vec3.T{0, 0, -1}})
	if diff := cmp.Diff(ts(left), []float64{9, 11}, approx); diff != "" {
		t.Errorf("ray at left sphere; diff (-got +want)\n%s", diff)
	}

	right := s.RayCast(stack, ray.Ray{Point: vec3.T{3, 0, 0}, Slope: vec3.T{0, 0, -1}})
	if diff := cmp.Diff(ts(right), []float64{9, 11}, approx); diff != "" {
		t.Errorf("ray at right sphere; diff (-got +want)\n%s", diff)
	}

	// Between the spheres: if the left sibling's translation leaked into the
	// right sibling, the right sphere would sit at x=0.
	between := s.RayCast(stack, ray.Ray{Point: vec3.T{0, 0, 0}, Slope: vec3.T{0, 0, -1}})
	if len(between) != 0 {
		t.Errorf("ray between spheres; got %v, want no contacts", ts(between))
	}

	if stack.Len() != 1 {
		t.Errorf("caller's stack changed; got len %d, want 1", stack.Len())
	}
}

func TestRayCastUsesCameraStack(t *testing.T) {
	s := twoSpheres()
	// Move the world 10 units further away.
	stack := xfstack.New(affinetransform.Translate(vec3.T{0, 0, -10}))

	got := s.RayCast(stack, ray.Ray{Point: vec3.T{3, 0, 0}, Slope: vec3.T{0, 0, -1}})
	if diff := cmp.Diff(ts(got), []float64{19, 21}, approx); diff != "" {
		t.Errorf("diff (-got +want)\n%s", diff)
	}
}

func TestLights(t *testing.T) {
	s := twoSpheres()

	lights := s.Lights(xfstack.New(affinetransform.Identity()))
	if len(lights) != 2 {
		t.Fatalf("Lights; got %d, want 2", len(lights))
	}

	got := []vec3.T{lights[0].ViewPosition().XYZ(), lights[1].ViewPosition().XYZ()}
	want := []vec3.T{{0, 0, -10}, {3, 5, -10}}
	if diff := cmp.Diff(got, want, approx); diff != "" {
		t.Errorf("light positions in view; diff (-got +want)\n%s", diff)
	}
}

func TestConcurrentRayCasts(t *testing.T) {
	s := twoSpheres()
	stack := xfstack.New(affinetransform.Identity())
	r := ray.Ray{Point: vec3.T{3, 0, 0}, Slope: vec3.T{0, 0, -1}}
	want := s.RayCast(stack, r)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if diff := cmp.Diff(s.RayCast(stack, r), want); diff != "" {
				errs <- diff
			}
		}()
	}
	wg.Wait()
	close(errs)

	for diff := range errs {
		t.Errorf("concurrent RayCast differs; diff (-got +want)\n%s", diff)
	}
}

func TestUnknownKindIsInvisible(t *testing.T) {
	s := &Scene{Root: &Leaf{NodeName: "mystery", Kind: geometry.Kind("teapot")}}
	got := s.RayCast(xfstack.Stack{}, ray.Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, -1}})
	if len(got) != 0 {
		t.Errorf("got %d contacts, want 0", len(got))
	}
	if !s.Bounds(xfstack.Stack{}).IsEmpty() {
		t.Errorf("unknown kind should have empty bounds")
	}
}

func TestEmptyScene(t *testing.T) {
	s := &Scene{}
	if got := s.RayCast(xfstack.Stack{}, ray.Ray{Slope: vec3.T{0, 0, -1}}); got != nil {
		t.Errorf("RayCast on empty scene; got %v", got)
	}
	if got := s.Lights(xfstack.Stack{}); got != nil {
		t.Errorf("Lights on empty scene; got %v", got)
	}
}

func TestBounds(t *testing.T) {
	got := twoSpheres().Bounds(xfstack.Stack{})
	if diff := cmp.Diff([]float64{got.X.Lo, got.X.Hi, got.Z.Lo, got.Z.Hi}, []float64{-4, 4, -11, -9}, approx); diff != "" {
		t.Errorf("Bounds; diff (-got +want)\n%s", diff)
	}
}

func TestWalk(t *testing.T) {
	var got []string
	Walk(twoSpheres().Root, func(path string, depth int, n Node) {
		got = append(got, path)
	})
	want := []string{"/world", "/world/left", "/world/left/ball", "/world/right", "/world/right/ball"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Walk; diff (-got +want)\n%s", diff)
	}
}
