// Package scenepack loads scene descriptions written in YAML.
//
// A document has a root node, an optional camera and an optional table of
// named textures:
//
//	textures:
//	  brick: textures/brick.png
//	  floor: {checkerboard: {period: 0.25, even: [1, 1, 1], odd: [0, 0, 0]}}
//	camera: {eye: [0, 0, 10], center: [0, 0, 0], up: [0, 1, 0], fov: 60}
//	root:
//	  group:
//	    name: world
//	    transform:
//	      - translate: [0, 0, -10]
//	      - rotate: {angle: 30, axis: [0, 1, 0]}
//	    lights:
//	      - {position: [0, 10, 0]}
//	    children:
//	      - leaf: {name: ball, kind: sphere, texture: brick, material: {diffuse: [1, 0, 0]}}
//
// Transform operations compose left to right, so the last one listed is
// applied to the children first.
package scenepack

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/glog"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"whitted/affinetransform"
	"whitted/camera"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/scene"
	"whitted/texture"
	"whitted/vmath/vec3"
	"whitted/vmath/vec4"
)

// LoadError reports a problem with one node of a scene description.
type LoadError struct {
	// Path is the slash-joined list of node names from the root.
	Path string

	inner error
	frame xerrors.Frame
}

func newLoadError(path string, inner error) *LoadError {
	return &LoadError{
		Path:  path,
		inner: inner,
		frame: xerrors.Caller(1),
	}
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Path, e.inner)
}

func (e *LoadError) Format(f fmt.State, c rune) { // implements fmt.Formatter
	xerrors.FormatError(e, f, c)
}

func (e *LoadError) FormatError(p xerrors.Printer) error { // implements xerrors.Formatter
	p.Print(fmt.Sprintf("node %s", e.Path))
	if p.Detail() {
		e.frame.Format(p)
	}
	return e.inner
}

func (e *LoadError) Unwrap() error {
	return e.inner
}

type sceneDoc struct {
	Textures map[string]textureDoc `yaml:"textures"`
	Camera   *cameraDoc            `yaml:"camera"`
	Root     *nodeDoc              `yaml:"root"`
}

// textureDoc is either a file path or a procedural texture.
type textureDoc struct {
	Path         string
	Checkerboard *checkerboardDoc `yaml:"checkerboard"`
}

func (t *textureDoc) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&t.Path)
	}
	type plain textureDoc
	return value.Decode((*plain)(t))
}

type checkerboardDoc struct {
	Period float64 `yaml:"period"`
	Even   vec3.T  `yaml:"even"`
	Odd    vec3.T  `yaml:"odd"`
}

type cameraDoc struct {
	Eye    vec3.T  `yaml:"eye"`
	Center vec3.T  `yaml:"center"`
	Up     vec3.T  `yaml:"up"`
	FOV    float64 `yaml:"fov"`
}

func (c *cameraDoc) UnmarshalYAML(value *yaml.Node) error {
	v := camera.DefaultView()
	*c = cameraDoc{Eye: v.Eye, Center: v.Center, Up: v.Up, FOV: v.FOVDegrees}
	type plain cameraDoc
	return value.Decode((*plain)(c))
}

type nodeDoc struct {
	Group *groupDoc `yaml:"group"`
	Leaf  *leafDoc  `yaml:"leaf"`
}

type groupDoc struct {
	Name      string        `yaml:"name"`
	Transform []transformOp `yaml:"transform"`
	Children  []nodeDoc     `yaml:"children"`
	Lights    []lightDoc    `yaml:"lights"`
}

type leafDoc struct {
	Name     string       `yaml:"name"`
	Kind     string       `yaml:"kind"`
	Material *materialDoc `yaml:"material"`
	Texture  string       `yaml:"texture"`
	Lights   []lightDoc   `yaml:"lights"`
}

type transformOp struct {
	Translate *vec3.T   `yaml:"translate"`
	Scale     *vec3.T   `yaml:"scale"`
	Rotate    *rotateOp `yaml:"rotate"`
}

type rotateOp struct {
	// Angle is in degrees.
	Angle float64 `yaml:"angle"`
	Axis  vec3.T  `yaml:"axis"`
}

type materialDoc struct {
	Ambient         vec3.T  `yaml:"ambient"`
	Diffuse         vec3.T  `yaml:"diffuse"`
	Specular        vec3.T  `yaml:"specular"`
	Shininess       float64 `yaml:"shininess"`
	Absorption      float64 `yaml:"absorption"`
	Reflection      float64 `yaml:"reflection"`
	RefractiveIndex float64 `yaml:"refractiveIndex"`
}

var defaultMaterial = material.Opaque(vec3.T{1, 1, 1})

func (m *materialDoc) UnmarshalYAML(value *yaml.Node) error {
	*m = materialDoc(defaultMaterial)
	type plain materialDoc
	return value.Decode((*plain)(m))
}

type lightDoc struct {
	Position    vec3.T `yaml:"position"`
	Directional bool   `yaml:"directional"`

	Ambient  vec3.T `yaml:"ambient"`
	Diffuse  vec3.T `yaml:"diffuse"`
	Specular vec3.T `yaml:"specular"`

	SpotDirection vec3.T `yaml:"spotDirection"`
	// SpotAngle is the spot half-angle in degrees.  Zero means not a spot.
	SpotAngle float64 `yaml:"spotAngle"`
}

func (l *lightDoc) UnmarshalYAML(value *yaml.Node) error {
	def := light.Point(vec3.T{0, 0, 0})
	*l = lightDoc{Ambient: def.Ambient, Diffuse: def.Diffuse, Specular: def.Specular}
	type plain lightDoc
	return value.Decode((*plain)(l))
}

func LoadScene(fileName string) (*scene.Scene, error) {
	fileBytes, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("while opening scene description: %w", err)
	}

	s, err := Parse(fileBytes, filepath.Dir(fileName))
	if err != nil {
		return nil, fmt.Errorf("while loading %s: %w", fileName, err)
	}
	return s, nil
}

// Parse builds a scene from a YAML document.  Texture paths are resolved
// relative to baseDir.
func Parse(data []byte, baseDir string) (*scene.Scene, error) {
	doc := &sceneDoc{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("while decoding scene description: %w", err)
	}

	s := &scene.Scene{
		Textures: texture.Table{},
	}

	for name, td := range doc.Textures {
		sampler, err := convertTexture(td, baseDir)
		if err != nil {
			glog.Warningf("Texture %q will render untextured: %v", name, err)
			continue
		}
		s.Textures[name] = sampler
	}

	if doc.Camera != nil {
		s.View = &camera.View{
			Eye:        doc.Camera.Eye,
			Center:     doc.Camera.Center,
			Up:         doc.Camera.Up,
			FOVDegrees: doc.Camera.FOV,
		}
	}

	if doc.Root != nil {
		root, err := convertNode(doc.Root, "", s.Textures)
		if err != nil {
			return nil, err
		}
		s.Root = root
	}

	return s, nil
}

// TextureFiles lists the image files a scene description refers to, resolved
// against baseDir like Parse does.
func TextureFiles(data []byte, baseDir string) ([]string, error) {
	doc := &sceneDoc{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("while decoding scene description: %w", err)
	}

	result := []string{}
	for _, td := range doc.Textures {
		if td.Checkerboard == nil && td.Path != "" {
			result = append(result, resolvePath(td.Path, baseDir))
		}
	}
	sort.Strings(result)
	return result, nil
}

func resolvePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func convertTexture(td textureDoc, baseDir string) (texture.Sampler, error) {
	switch {
	case td.Checkerboard != nil:
		if !(td.Checkerboard.Period > 0) {
			return nil, fmt.Errorf("checkerboard period %v must be positive", td.Checkerboard.Period)
		}
		return &texture.Checkerboard{
			Period: td.Checkerboard.Period,
			Even:   td.Checkerboard.Even,
			Odd:    td.Checkerboard.Odd,
		}, nil
	case td.Path != "":
		return texture.Load(resolvePath(td.Path, baseDir))
	}
	return nil, fmt.Errorf("texture has neither a path nor a procedural definition")
}

func convertNode(nd *nodeDoc, prefix string, textures texture.Table) (scene.Node, error) {
	switch {
	case nd.Group != nil && nd.Leaf != nil:
		return nil, newLoadError(prefix+"/?", fmt.Errorf("node is both a group and a leaf"))
	case nd.Group != nil:
		return convertGroup(nd.Group, prefix, textures)
	case nd.Leaf != nil:
		return convertLeaf(nd.Leaf, prefix, textures)
	}
	return nil, newLoadError(prefix+"/?", fmt.Errorf("node is neither a group nor a leaf"))
}

func convertGroup(gd *groupDoc, prefix string, textures texture.Table) (scene.Node, error) {
	path := prefix + "/" + gd.Name

	xf, err := convertTransform(gd.Transform)
	if err != nil {
		return nil, newLoadError(path, err)
	}

	lights, err := convertLights(gd.Lights)
	if err != nil {
		return nil, newLoadError(path, err)
	}

	g := &scene.Group{
		NodeName:    gd.Name,
		Transform:   xf,
		GroupLights: lights,
	}
	for i := range gd.Children {
		child, err := convertNode(&gd.Children[i], path, textures)
		if err != nil {
			return nil, err
		}
		g.Members = append(g.Members, child)
	}
	return g, nil
}

func convertLeaf(ld *leafDoc, prefix string, textures texture.Table) (scene.Node, error) {
	path := prefix + "/" + ld.Name

	kind := geometry.ParseKind(ld.Kind)
	if _, ok := geometry.Lookup(kind); !ok {
		glog.Warningf("Leaf %s has unknown kind %q and will not be visible", path, ld.Kind)
	}

	m := defaultMaterial
	if ld.Material != nil {
		m = material.Material(*ld.Material)
	}
	if err := m.Validate(); err != nil {
		return nil, newLoadError(path, fmt.Errorf("while validating material: %w", err))
	}

	tex, ok := textures.Lookup(ld.Texture)
	if !ok {
		glog.Warningf("Leaf %s uses missing texture %q; rendering untextured", path, ld.Texture)
	}

	lights, err := convertLights(ld.Lights)
	if err != nil {
		return nil, newLoadError(path, err)
	}

	return &scene.Leaf{
		NodeName:   ld.Name,
		Kind:       kind,
		Material:   m,
		Texture:    tex,
		LeafLights: lights,
	}, nil
}

func convertTransform(ops []transformOp) (affinetransform.AffineTransform, error) {
	result := affinetransform.Identity()
	for i, op := range ops {
		var step affinetransform.AffineTransform
		set := 0
		if op.Translate != nil {
			step = affinetransform.Translate(*op.Translate)
			set++
		}
		if op.Scale != nil {
			step = affinetransform.ScaleV(*op.Scale)
			set++
		}
		if op.Rotate != nil {
			if op.Rotate.Axis.Norm() == 0 {
				return result, fmt.Errorf("transform step %d: rotation axis is zero", i)
			}
			step = affinetransform.Rotate(op.Rotate.Angle*math.Pi/180, op.Rotate.Axis)
			set++
		}
		if set != 1 {
			return result, fmt.Errorf("transform step %d: want exactly one of translate, scale, rotate; got %d", i, set)
		}
		result = affinetransform.Compose(result, step)
	}
	return result, nil
}

func convertLights(lds []lightDoc) ([]light.Light, error) {
	var result []light.Light
	for i, ld := range lds {
		l := light.Light{
			Position:      vec4.Point(ld.Position),
			Ambient:       ld.Ambient,
			Diffuse:       ld.Diffuse,
			Specular:      ld.Specular,
			SpotDirection: vec4.Direction(ld.SpotDirection),
			SpotCutoff:    -1,
		}
		if ld.Directional {
			if ld.Position.Norm() == 0 {
				return nil, fmt.Errorf("light %d: directional light needs a nonzero direction", i)
			}
			l.Position = vec4.Direction(ld.Position)
		}
		if ld.SpotAngle != 0 {
			if ld.SpotDirection.Norm() == 0 {
				return nil, fmt.Errorf("light %d: spot angle without a spot direction", i)
			}
			l.SpotCutoff = light.CutoffFromAngle(ld.SpotAngle)
		}
		result = append(result, l)
	}
	return result, nil
}
