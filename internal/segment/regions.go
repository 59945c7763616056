package segment

import (
	"image"
)

// Box is an axis-aligned bounding box in image pixel coordinates.
//
// A Box covers the half-open ranges [X, X+Width) and [Y, Y+Height).
// Boxes produced by this package always have Width > 0 and Height > 0.
type Box struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Area returns Width x Height in square pixels.
func (b Box) Area() int {
	return b.Width * b.Height
}

// Right returns the exclusive right edge.
func (b Box) Right() int {
	return b.X + b.Width
}

// Bottom returns the exclusive bottom edge.
func (b Box) Bottom() int {
	return b.Y + b.Height
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.Right(), b.Bottom())
}

// DetectRegions returns the bounding box of every external foreground
// component in the mask.
//
// Foreground pixels are grouped with 8-connectivity, matching the square
// kernel used by Grow. A component lying entirely inside a hole of another
// component (a speech balloon inside a panel border, say) is not reported:
// only components reachable from the page background count.
//
// # Algorithm
//
//  1. Outer background: flood-fill background pixels from the image border
//     using 4-connectivity
//  2. Components: flood-fill each unvisited foreground pixel (8-connected),
//     tracking its extent
//  3. External check: a component is kept if it touches the image border or
//     has a pixel 4-adjacent to outer background
//
// Boxes are returned in raster order of each component's first pixel.
// An empty mask yields an empty, non-nil slice.
func DetectRegions(m *Mask) []Box {
	boxes := make([]Box, 0)
	width, height := m.Width, m.Height
	if width == 0 || height == 0 {
		return boxes
	}

	outside := outerBackground(m)
	visited := make([]bool, width*height)

	for start := range m.Pix {
		if m.Pix[start] != Foreground || visited[start] {
			continue
		}
		box, external := floodComponent(m, outside, visited, start)
		if external {
			boxes = append(boxes, box)
		}
	}

	return boxes
}

// outerBackground marks background pixels 4-connected to the image border.
func outerBackground(m *Mask) []bool {
	width, height := m.Width, m.Height
	outside := make([]bool, width*height)
	stack := make([]int, 0, 2*(width+height))

	push := func(i int) {
		if m.Pix[i] == Background && !outside[i] {
			outside[i] = true
			stack = append(stack, i)
		}
	}

	for x := 0; x < width; x++ {
		push(x)
		push((height-1)*width + x)
	}
	for y := 0; y < height; y++ {
		push(y * width)
		push(y*width + width - 1)
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		if x > 0 {
			push(i - 1)
		}
		if x < width-1 {
			push(i + 1)
		}
		if y > 0 {
			push(i - width)
		}
		if y < height-1 {
			push(i + width)
		}
	}

	return outside
}

// floodComponent performs an iterative 8-connected flood fill from start.
//
// Uses an explicit stack rather than recursion so large blobs cannot
// overflow the goroutine stack. Returns the component's bounding box and
// whether it touches the border or the outer background.
func floodComponent(m *Mask, outside, visited []bool, start int) (Box, bool) {
	width, height := m.Width, m.Height
	minX, minY := width, height
	maxX, maxY := -1, -1
	external := false

	visited[start] = true
	stack := []int{start}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}

		if !external {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				external = true
			} else if outside[i-1] || outside[i+1] || outside[i-width] || outside[i+width] {
				external = true
			}
		}

		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			if ny < 0 || ny >= height {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				nx := x + dx
				if (dx == 0 && dy == 0) || nx < 0 || nx >= width {
					continue
				}
				j := ny*width + nx
				if m.Pix[j] == Foreground && !visited[j] {
					visited[j] = true
					stack = append(stack, j)
				}
			}
		}
	}

	return Box{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}, external
}
