package engine

import (
	"fmt"

	"github.com/piwi3910/plannest/internal/mask"
	"github.com/piwi3910/plannest/internal/model"
)

// contourEpsilon is the Douglas-Peucker tolerance applied to traced part
// outlines, in pixels.
const contourEpsilon = 1.0

// ExtractPart converts an object instance's element masks into a placeable
// part: the union of the masks, the minimal bounding box of its non-zero
// pixels, and the mask cropped to that box. Instances whose union is empty
// produce no part.
//
// When extractContours is set, the outer outline of every connected component
// is traced from the full union mask and simplified. Contours are carried on
// the part for toolpath and vector export but never influence placement.
func ExtractPart(item model.GroupItem, extractContours bool) (model.Part, error) {
	union, err := mask.Union(item.Instance.Elements)
	if err != nil {
		return model.Part{}, fmt.Errorf("extract %s/%s: %w", item.Object.ID, item.Instance.ID, err)
	}
	box, ok := mask.ContentRect(union)
	if !ok {
		return model.Part{}, fmt.Errorf("extract %s/%s: empty mask", item.Object.ID, item.Instance.ID)
	}

	part := model.NewPart(item.Object.ID, item.Instance.ID, item.Object.Name, item.Instance.Quantity)
	part.BBox = model.BoxFromRect(box)
	part.Mask = mask.Crop(union, box)
	part.FullMask = union

	if extractContours {
		for _, outline := range mask.TraceOutlines(union) {
			simplified := mask.Simplify(outline, contourEpsilon)
			if len(simplified) >= 3 {
				part.Contours = append(part.Contours, simplified)
			}
		}
	}

	return part, nil
}
