// Package stylize turns a photograph into a flat-color, ink-lined
// illustration.
//
// A Pipeline runs five stages over one image:
//
//  1. grade: bilateral smoothing and palette quantization (Grade)
//  2. edges: Sobel line-art mask from the original image (Edges)
//  3. texture: seeded paper grain (Texture)
//  4. composite: ink outlines and grain overlay (Composite)
//  5. finish: optional mood grade (Finish)
//
// Grade and edges read the same input and run concurrently. Every stage is
// a pure function of its inputs, so a Pipeline can be shared by any number
// of goroutines.
package stylize

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"oniazusa/internal/raster"
	"oniazusa/internal/style"
)

// Stage names a pipeline step in errors and logs.
type Stage string

const (
	StageGrade     Stage = "grade"
	StageEdges     Stage = "edges"
	StageTexture   Stage = "texture"
	StageComposite Stage = "composite"
	StageFinish    Stage = "finish"
)

// StageError tags a failure with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded in err, or "" if none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

type Pipeline struct {
	profile *style.Profile
	opts    CompositeOptions
}

// New binds a pipeline to a validated profile.
func New(profile *style.Profile) (*Pipeline, error) {
	if profile == nil || profile.Palette == nil {
		return nil, fmt.Errorf("%w: nil profile or palette", style.ErrInvalidProfile)
	}
	return &Pipeline{
		profile: profile,
		opts: CompositeOptions{
			Ink:            profile.Palette.RGB(profile.Palette.Darkest()),
			InkStrength:    profile.InkStrength,
			GrainIntensity: profile.GrainIntensity,
		},
	}, nil
}

// Run stylizes img. The input is not modified. Cancellation is checked
// between stages.
func (p *Pipeline) Run(ctx context.Context, img *raster.Image) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, &StageError{Stage: StageGrade, Err: err}
	}

	var graded, mask *raster.Image
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		if graded, err = Grade(img, p.profile); err != nil {
			return &StageError{Stage: StageGrade, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if mask, err = Edges(img, p.profile.EdgeThreshold); err != nil {
			return &StageError{Stage: StageEdges, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tex, err := Texture(img.Width, img.Height, p.profile.GrainIntensity, p.profile.Seed)
	if err != nil {
		return nil, &StageError{Stage: StageTexture, Err: err}
	}

	out, err := Composite(graded, mask, tex, p.opts)
	if err != nil {
		return nil, &StageError{Stage: StageComposite, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if out, err = Finish(out, p.profile.Mood); err != nil {
		return nil, &StageError{Stage: StageFinish, Err: err}
	}
	return out, nil
}
