// Package widget implements the compact water and steps cards. They share the
// repository's mutation API with every other surface and keep no state of
// their own beyond what they last rendered.
package widget

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/sadopc/feet/internal/repository"
	"github.com/sadopc/feet/internal/store"
)

// StepIncrement is what one tap on the steps card adds.
const StepIncrement = 100

// View is what a card displays.
type View struct {
	Title   string
	Value   string // primary figure
	Detail  string // secondary figure
	Goal    string
	Percent int // 0..100
	CanAdd  bool
}

// Water is the water card controller.
type Water struct {
	repo   *repository.Repository
	logger *log.Logger
}

func NewWater(repo *repository.Repository, logger *log.Logger) *Water {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Water{repo: repo, logger: logger.WithPrefix("widget.water")}
}

// View reads today's total. Storage errors are logged and the card falls back
// to an empty day with default goals.
func (w *Water) View() View {
	total, goal, glass := 0, store.DefaultWaterGoalMl, store.DefaultGlassSizeMl

	prefs, err := w.repo.Preferences()
	if err != nil {
		w.logger.Error("read preferences", "err", err)
	} else {
		goal, glass = prefs.DailyWaterGoalMl, prefs.GlassSizeMl
	}
	rec, err := w.repo.WaterByDate(w.repo.Today())
	if err != nil {
		w.logger.Error("read water", "err", err)
	} else if rec != nil {
		total = rec.TotalMl
	}

	return waterView(total, goal, glass)
}

func waterView(total, goal int, glass float64) View {
	glasses := 0
	if int(glass) > 0 {
		glasses = total / int(glass)
	}
	return View{
		Title:   "Water",
		Value:   fmt.Sprintf("%.1fL", float64(total)/1000),
		Detail:  fmt.Sprintf("%d glasses", glasses),
		Goal:    fmt.Sprintf("/ %.1fL", float64(goal)/1000),
		Percent: repository.Percent(total, goal),
		CanAdd:  total < goal,
	}
}

// Add logs one glass without passing the daily goal. It is a no-op once the
// goal is reached.
func (w *Water) Add() error {
	prefs, err := w.repo.Preferences()
	if err != nil {
		return err
	}
	_, err = w.repo.AddWaterUpToGoal(int(prefs.GlassSizeMl))
	return err
}

// Remove takes one glass back off today's total.
func (w *Water) Remove() error {
	prefs, err := w.repo.Preferences()
	if err != nil {
		return err
	}
	_, err = w.repo.AddWater(-int(prefs.GlassSizeMl))
	return err
}

// Steps is the steps card controller.
type Steps struct {
	repo   *repository.Repository
	logger *log.Logger
}

func NewSteps(repo *repository.Repository, logger *log.Logger) *Steps {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Steps{repo: repo, logger: logger.WithPrefix("widget.steps")}
}

func (s *Steps) View() View {
	steps, goal := 0, store.DefaultStepGoal

	rec, err := s.repo.StepsByDate(s.repo.Today())
	if err != nil {
		s.logger.Error("read steps", "err", err)
	} else if rec != nil {
		steps = rec.Steps
		if rec.Goal > 0 {
			goal = rec.Goal
		}
	} else if prefs, err := s.repo.Preferences(); err == nil && prefs.DailyStepGoal > 0 {
		goal = prefs.DailyStepGoal
	}

	return stepsView(steps, goal)
}

func stepsView(steps, goal int) View {
	return View{
		Title:   "Steps",
		Value:   fmt.Sprintf("%d", steps),
		Detail:  fmt.Sprintf("%d kcal", repository.Calories(steps)),
		Goal:    fmt.Sprintf("/ %d", goal),
		Percent: repository.Percent(steps, goal),
		CanAdd:  true,
	}
}

func (s *Steps) Add() error {
	_, err := s.repo.AddSteps(StepIncrement)
	return err
}

// Reset sets today's count back to zero.
func (s *Steps) Reset() error {
	_, err := s.repo.SetSteps(0)
	return err
}

// Controller is what the card program drives.
type Controller interface {
	View() View
	Add() error
}

// Remover is implemented by controllers that support taking an entry back.
type Remover interface {
	Remove() error
}

// Resetter is implemented by controllers that can clear today's value.
type Resetter interface {
	Reset() error
}
