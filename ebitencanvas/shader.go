package ebitencanvas

import "github.com/hajimehoshi/ebiten/v2"

// differenceShaderSrc blends Images[0] (source) over Images[1] (backdrop)
// with the separable difference mode. Both inputs are premultiplied:
//
//	co = cs + cb - 2*min(cs*ab, cb*as)
//	ao = as + ab - as*ab
const differenceShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	s := imageSrc0At(src)
	b := imageSrc1At(src)
	rgb := s.rgb + b.rgb - 2*min(s.rgb*b.a, b.rgb*s.a)
	a := s.a + b.a - s.a*b.a
	return vec4(clamp(rgb, vec3(0), vec3(a)), a)
}
`

var differenceShader *ebiten.Shader

func ensureDifferenceShader() *ebiten.Shader {
	if differenceShader == nil {
		s, err := ebiten.NewShader([]byte(differenceShaderSrc))
		if err != nil {
			panic("unmagic: failed to compile difference shader: " + err.Error())
		}
		differenceShader = s
	}
	return differenceShader
}
