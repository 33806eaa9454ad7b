package generate

import (
	"fmt"
	"strings"
)

// singleReport composes the text block returned for a successful
// generate_image call. Per-image download failures appear inline; they do not
// make the call itself an error.
func singleReport(prompt string, st settings, seed int64, images []DownloadedImage) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Image generation complete.\n\n")
	fmt.Fprintf(&b, "Prompt: %s\n", prompt)
	if st.ratio != "" {
		fmt.Fprintf(&b, "Aspect ratio: %s\n", st.ratio)
	} else {
		fmt.Fprintf(&b, "Size: %s\n", st.sizeLabel())
		fmt.Fprintf(&b, "Images requested: %d (max %d)\n", st.numImages, st.maxImages)
	}
	fmt.Fprintf(&b, "Seed used: %d\n", seed)
	fmt.Fprintf(&b, "Safety checker: %s\n", onOff(st.safety))
	if st.syncMode {
		b.WriteString("Sync mode: enabled\n")
	}

	b.WriteString("\nResults:\n")
	writeImageList(&b, "", images)

	return strings.TrimRight(b.String(), "\n")
}

// batchReport composes the aggregate text block for a generate_image_batch
// call. Either section is omitted when its partition is empty; the header
// counts always sum to the number of prompts submitted.
func batchReport(total int, st settings, outcome BatchOutcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Batch generation finished: %d prompt(s), %d succeeded, %d failed.\n\n",
		total, len(outcome.Successful), len(outcome.Failed))
	if st.ratio != "" {
		fmt.Fprintf(&b, "Aspect ratio: %s\n", st.ratio)
	} else {
		fmt.Fprintf(&b, "Size: %s\n", st.sizeLabel())
	}
	fmt.Fprintf(&b, "Safety checker: %s\n", onOff(st.safety))

	if len(outcome.Successful) > 0 {
		b.WriteString("\nSuccessful generations:\n")
		for i, res := range outcome.Successful {
			fmt.Fprintf(&b, "\n%d. Prompt: %s\n", i+1, res.Prompt)
			fmt.Fprintf(&b, "   Seed used: %d\n", res.Seed)
			writeImageList(&b, "   ", res.Images)
		}
	}

	if len(outcome.Failed) > 0 {
		b.WriteString("\nFailed generations:\n")
		for i, failure := range outcome.Failed {
			fmt.Fprintf(&b, "\n%d. Prompt: %s\n", i+1, failure.Prompt)
			fmt.Fprintf(&b, "   Error: %s\n", failure.Err.Error())
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// writeImageList enumerates one result's images with their dimensions, local
// path or download-failure note, and source URL. indent prefixes every line,
// letting the batch report nest the list under its prompt entry.
func writeImageList(b *strings.Builder, indent string, images []DownloadedImage) {
	for i, img := range images {
		fmt.Fprintf(b, "%s%d. %s\n", indent, i+1, img.Dimensions)
		if img.Err != nil {
			fmt.Fprintf(b, "%s   Download failed: %s\n", indent, img.Err.Error())
			fmt.Fprintf(b, "%s   Retrieve manually: %s\n", indent, img.SourceURL)
			continue
		}
		fmt.Fprintf(b, "%s   Saved to: %s\n", indent, img.LocalPath)
		fmt.Fprintf(b, "%s   URL: %s\n", indent, img.SourceURL)
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
