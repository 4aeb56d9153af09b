package prompts

import "context"

// VisionInstruction is sent alongside an uploaded room photo.
const VisionInstruction = "Describe the interior design style of the room in this image."

// RenderVisionInstruction emits prompt callbacks for the vision request.
func RenderVisionInstruction(ctx context.Context) (string, error) {
	return render(ctx, "vision_prompt", VisionInstruction)
}
