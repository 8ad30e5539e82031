package renderer

import "image"

// Partition is a rectangular region of the image rendered as one unit of work
type Partition struct {
	ID     int             // Index in submission order
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTileGrid creates a grid of square tiles covering the entire image.
// Edge tiles are clipped to the image.
func NewTileGrid(width, height, tileSize int) []Partition {
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return nil
	}
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	partitions := make([]Partition, 0, tilesX*tilesY)
	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)
			partitions = append(partitions, Partition{
				ID:     len(partitions),
				Bounds: image.Rect(x0, y0, x1, y1),
			})
		}
	}
	return partitions
}

// NewRowPartitions creates one partition per image row
func NewRowPartitions(width, height int) []Partition {
	if width <= 0 || height <= 0 {
		return nil
	}
	partitions := make([]Partition, height)
	for y := range partitions {
		partitions[y] = Partition{ID: y, Bounds: image.Rect(0, y, width, y+1)}
	}
	return partitions
}

// partitionsFor splits the image as the config asks
func partitionsFor(cfg Config) []Partition {
	if cfg.Partition == PartitionRows {
		return NewRowPartitions(cfg.Width, cfg.Height)
	}
	return NewTileGrid(cfg.Width, cfg.Height, cfg.TileSize)
}
