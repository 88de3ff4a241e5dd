package replicate

// A transform reshapes a payload from the client schema into the remote
// table's column set. Transforms are pure: they return a new map and never
// mutate their input. Tables without a registered transform pass payloads
// through unchanged.
type transform func(payload map[string]any) map[string]any

// transforms dispatches table-specific payload reshaping by table name.
var transforms = map[string]transform{
	"annotations": transformAnnotation,
}

// transformAnnotation flattens the client's nested annotation shape into
// remote columns:
//
//	data.type               -> type, with kind fixed to "annotation"
//	data.rects / data.ranges -> geometry, chosen by the type discriminator
//	metadata.color          -> style.color
//	metadata.notes          -> content
//	metadata.attachedAssets -> attachedAssets (passed through)
//	metadata.{title,kind,tags,noteGroups} -> metadata
//
// Remaining fields of data and metadata are dropped, not passed through.
func transformAnnotation(payload map[string]any) map[string]any {
	result := make(map[string]any, len(payload)+4)
	for k, v := range payload {
		result[k] = v
	}

	if data, ok := payload["data"].(map[string]any); ok {
		result["kind"] = "annotation"
		if typeVal, ok := data["type"]; ok {
			result["type"] = typeVal
		}

		if typeStr, ok := data["type"].(string); ok {
			var geometry any
			if typeStr == "rectangle" {
				if rects, ok := data["rects"]; ok {
					geometry = map[string]any{"rects": rects}
				}
			} else {
				if ranges, ok := data["ranges"]; ok {
					geometry = map[string]any{"ranges": ranges}
				}
			}
			result["geometry"] = geometry
		}
	}
	delete(result, "data")

	if meta, ok := payload["metadata"].(map[string]any); ok {
		if color, ok := meta["color"]; ok {
			result["style"] = map[string]any{"color": color}
		}
		if notes, ok := meta["notes"]; ok {
			result["content"] = notes
		}
		if attached, ok := meta["attachedAssets"]; ok {
			result["attachedAssets"] = attached
		}

		out := make(map[string]any)
		for _, field := range []string{"title", "kind", "tags", "noteGroups"} {
			if v, ok := meta[field]; ok {
				out[field] = v
			}
		}
		if len(out) > 0 {
			result["metadata"] = out
		} else {
			delete(result, "metadata")
		}
	} else {
		delete(result, "metadata")
	}

	return result
}
