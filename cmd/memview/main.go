// Command memview shows an assembled GR0040 image as a scrollable grid of
// words. It accepts an assembly source (assembled in-process) or a combined
// hex file.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"gr0040asm/pkg/asm"
	"gr0040asm/pkg/grid"
	"gr0040asm/pkg/hexfile"
	"gr0040asm/pkg/utils"
)

const (
	wordsPerRow  = 8
	rowHeight    = 16
	charWidth    = 7
	addrWidth    = 7 * charWidth // "XXXX:  "
	cellWidth    = 5 * charWidth // "XXXX "
	statusHeight = 20

	screenWidth  = 8 + addrWidth + wordsPerRow*cellWidth
	screenHeight = 400
)

var (
	addrColor = color.RGBA{120, 160, 220, 255}
	wordColor = color.RGBA{220, 220, 220, 255}
	dimColor  = color.RGBA{90, 90, 90, 255}
	barColor  = color.RGBA{0, 0, 0, 180}
)

// Viewer is the ebiten game showing one image.
type Viewer struct {
	name  string
	words []uint16
	// symbols and sourceMap are nil for images loaded from hex.
	symbols   *asm.SymbolTable
	sourceMap map[int]asm.Line
	top       int // first visible row
}

func (v *Viewer) rows() int {
	return grid.Rows(len(v.words), wordsPerRow)
}

func (v *Viewer) visibleRows() int {
	return (screenHeight - statusHeight) / rowHeight
}

// scroll moves the view by delta rows, keeping the last row reachable.
func (v *Viewer) scroll(delta int) {
	v.top += delta
	if maxTop := v.rows() - v.visibleRows(); v.top > maxTop {
		v.top = maxTop
	}
	if v.top < 0 {
		v.top = 0
	}
}

// isGap reports whether word i is padding inserted for .org. Without a
// source map every NOP is treated as padding.
func (v *Viewer) isGap(i int) bool {
	if v.words[i] != asm.NOPWord {
		return false
	}
	if v.sourceMap == nil {
		return true
	}
	_, ok := v.sourceMap[i]
	return !ok
}

// topLabel returns the first label bound to a word of the top row.
func (v *Viewer) topLabel() (string, bool) {
	start := v.top * wordsPerRow
	for i := start; i < start+wordsPerRow && i < len(v.words); i++ {
		if name, ok := v.symbols.LabelAt(i * 2); ok {
			return name, true
		}
	}
	return "", false
}

func (v *Viewer) status() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %d words", v.name, len(v.words))
	if v.rows() > 0 {
		fmt.Fprintf(&sb, "  row %d/%d", v.top+1, v.rows())
	}
	if name, ok := v.topLabel(); ok {
		fmt.Fprintf(&sb, "  <%s>", name)
	}
	return sb.String()
}

func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		v.scroll(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		v.scroll(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		v.scroll(v.visibleRows())
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		v.scroll(-v.visibleRows())
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		v.scroll(-v.rows())
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		v.scroll(v.rows())
	}

	if _, dy := ebiten.Wheel(); dy > 0 {
		v.scroll(-1)
	} else if dy < 0 {
		v.scroll(1)
	}
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	face := basicfont.Face7x13

	start := v.top * wordsPerRow
	end := min(len(v.words), (v.top+v.visibleRows())*wordsPerRow)
	for i := start; i < end; i++ {
		col, row := grid.GetGridCoords(i, wordsPerRow)
		y := (row-v.top+1)*rowHeight - 3
		if col == 0 {
			text.Draw(screen, fmt.Sprintf("%04X:", i*2), face, 4, y, addrColor)
		}
		clr := wordColor
		if v.isGap(i) {
			clr = dimColor
		}
		x := 4 + addrWidth + col*cellWidth
		text.Draw(screen, fmt.Sprintf("%04X", v.words[i]), face, x, y, clr)
	}

	barY := screenHeight - statusHeight
	ebitenutil.DrawRect(screen, 0, float64(barY), screenWidth, statusHeight, barColor)
	ebitenutil.DebugPrintAt(screen, v.status(), 4, barY+2)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// load reads a .hex image directly and assembles anything else.
func load(path string) (*Viewer, error) {
	fullPath, _, err := utils.GetPathInfo(path)
	if err != nil {
		return nil, err
	}
	v := &Viewer{name: filepath.Base(fullPath)}

	if strings.EqualFold(filepath.Ext(fullPath), ".hex") {
		v.words, err = hexfile.Read(fullPath)
		return v, err
	}

	prog, err := asm.AssembleFile(fullPath)
	if err != nil {
		return nil, err
	}
	v.words, v.symbols, v.sourceMap = prog.Words, prog.Symbols, prog.SourceMap
	return v, nil
}

func main() {
	flag.Parse()
	defer glog.Flush()

	path := hexfile.DefaultPaths.Combined
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	viewer, err := load(path)
	if err != nil {
		glog.Exitf("Failed to load %s: %v", path, err)
	}
	glog.V(1).Infof("loaded %s: %d words", path, len(viewer.words))

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth*2, screenHeight*2)
	ebiten.SetWindowTitle("GR0040 memview - " + viewer.name)

	if err := ebiten.RunGame(viewer); err != nil {
		glog.Exit(err)
	}
}
