package emgtrain

import (
	"fmt"
	"log"
	"time"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/emgnet"
	"github.com/unixpickle/emgnet/emgdata"
	"github.com/unixpickle/emgnet/emgsgd"
	"gonum.org/v1/gonum/mat"
)

// A Trainer fits a model to a training split one sample
// at a time and evaluates it on a held-out split.
//
// A Trainer is the only thing that mutates the model's
// parameters while it runs; it is not safe for concurrent
// use.
type Trainer struct {
	Model  emgnet.Layer
	Params []*anydiff.Var

	// Criterion scores the model output against the
	// one-hot target of every sample.
	Criterion emgnet.Cost

	Optimizer *emgsgd.Optimizer

	// Scheduler, if non-nil, is advanced once at the end of
	// every training epoch.
	Scheduler emgsgd.Scheduler

	TrainSet emgdata.Examples
	EvalSet  emgdata.Examples

	MaxEpochs int

	// Stopper decides when the training loss has stalled.
	// If nil, NewEarlyStopper is used.
	Stopper *EarlyStopper

	Best *Best

	// Logger receives progress lines.
	// If nil, the standard logger is used.
	Logger *log.Logger

	// Stop, if non-nil, ends training before the next
	// epoch once it is closed.
	Stop <-chan struct{}
}

// NewTrainer creates a Trainer for the model's parameters
// and records the initial weights as the best so far.
func NewTrainer(model emgnet.Layer, criterion emgnet.Cost, opt *emgsgd.Optimizer,
	trainSet, evalSet emgdata.Examples, maxEpochs int) *Trainer {
	params := emgnet.Parameters(model)
	return &Trainer{
		Model:     model,
		Params:    params,
		Criterion: criterion,
		Optimizer: opt,
		TrainSet:  trainSet,
		EvalSet:   evalSet,
		MaxEpochs: maxEpochs,
		Best:      NewBest(params),
	}
}

// Summary describes a call to Train.
type Summary struct {
	// Epochs is the number of epochs that ran.
	Epochs int

	// EarlyStop is set if the loss stalled.
	EarlyStop bool

	Elapsed time.Duration
}

// OneEpoch runs the phase over its split: TrainSet for
// Train, EvalSet for Eval.
//
// It returns the summed per-sample loss and the number of
// samples whose highest output matched the target class.
func (t *Trainer) OneEpoch(phase Phase) (loss float64, correct int) {
	res := t.epoch(phase)
	return res.Loss, res.Correct
}

// Train runs up to MaxEpochs training epochs.
//
// If valTrain is set, every epoch is followed by an
// evaluation pass which decides the best weights.
// Otherwise the training metrics decide them.
func (t *Trainer) Train(valTrain bool) Summary {
	start := time.Now()
	stopper := t.Stopper
	if stopper == nil {
		stopper = NewEarlyStopper()
	}
	stopper.Reset()

	var summary Summary
	t.logger().Println("Training...")
	for epoch := 1; epoch <= t.MaxEpochs; epoch++ {
		if t.stopRequested() {
			t.logger().Println("Stop requested")
			break
		}
		summary.Epochs = epoch

		res := t.epoch(Train)
		acc := accuracy(res.Correct, len(t.TrainSet))
		t.logger().Printf("Epoch: %d/%d", epoch, t.MaxEpochs)
		t.logger().Printf("Phase: %s  Loss: %.8f    Accuracy: %.4f", Train, res.Loss, acc)

		if valTrain {
			valLoss, valAcc := t.Test(false, epoch)
			t.logger().Printf("Phase: Validation    Loss: %.8f    Accuracy: %.4f",
				valLoss, valAcc)
		} else {
			t.Best.Consider(res.Loss, acc, epoch, t.Params)
		}

		if stopper.Observe(res.Loss) {
			summary.EarlyStop = true
			t.logger().Printf("Loss stalled for %d epochs", stopper.Patience)
			break
		}

		if t.Scheduler != nil {
			t.Scheduler.Advance()
		}
	}

	summary.Elapsed = time.Since(start)
	t.logger().Println("Training Summary:")
	t.logger().Printf("Best epoch was %d of %d with Loss: %.8f    Accuracy: %.4f",
		t.Best.Epoch, summary.Epochs, t.Best.Loss, t.Best.Accuracy)
	t.logger().Printf("Training completed in %dm %ds",
		int(summary.Elapsed.Minutes()), int(summary.Elapsed.Seconds())%60)
	return summary
}

// Test evaluates the model on EvalSet and returns the
// loss and the accuracy as a percentage.
//
// If useBest is set, the best weights are first copied
// into the model and a test summary is logged.
// Otherwise the result is offered to Best under the given
// epoch number.
func (t *Trainer) Test(useBest bool, epoch int) (loss, acc float64) {
	if useBest {
		t.logger().Println("Testing with best weights...")
		if err := t.Best.Weights.Restore(t.Params); err != nil {
			panic(err)
		}
	}

	res := t.epoch(Eval)
	acc = accuracy(res.Correct, len(t.EvalSet))
	if useBest {
		t.logger().Println("Test Summary:")
		t.logger().Printf("    Loss = %.8f", res.Loss)
		t.logger().Printf("    Correct: %d/%d", res.Correct, len(t.EvalSet))
		t.logger().Printf("    Accuracy: %.4f", acc)
		if res.Confusion != nil {
			t.logger().Printf("    Confusion (rows: actual, columns: predicted):\n%v",
				mat.Formatted(res.Confusion, mat.Prefix("    "), mat.Squeeze()))
		}
	} else {
		t.Best.Consider(res.Loss, acc, epoch, t.Params)
	}
	return res.Loss, acc
}

type epochResult struct {
	Loss      float64
	Correct   int
	Confusion *mat.Dense
}

func (t *Trainer) epoch(phase Phase) *epochResult {
	var examples emgdata.Examples
	switch phase {
	case Train:
		examples = t.TrainSet
		emgnet.SetTraining(t.Model, true)
	case Eval:
		examples = t.EvalSet
		emgnet.SetTraining(t.Model, false)
	default:
		panic(fmt.Sprintf("unknown phase: %v", phase))
	}

	res := &epochResult{}
	if len(examples) > 0 {
		n := examples[0].Target.Len()
		res.Confusion = mat.NewDense(n, n, nil)
	}
	for _, ex := range examples {
		out, loss := t.step(phase, ex)
		res.Loss += loss
		predicted := anyvec.MaxIndex(out)
		actual := anyvec.MaxIndex(ex.Target)
		if predicted == actual {
			res.Correct++
		}
		if _, cols := res.Confusion.Dims(); predicted < cols {
			res.Confusion.Set(actual, predicted, res.Confusion.At(actual, predicted)+1)
		}
	}
	return res
}

// step runs one sample through the model, updating the
// parameters in the Train phase.
func (t *Trainer) step(phase Phase, ex *emgdata.Example) (anyvec.Vector, float64) {
	out := t.Model.Apply(anydiff.NewConst(ex.Input), 1)
	cost := t.Criterion.Cost(anydiff.NewConst(ex.Target), out, 1)
	loss := emgnet.Float(anyvec.Sum(cost.Output()))

	if phase == Train {
		grad := anydiff.NewGrad(t.Params...)
		c := cost.Output().Creator()
		upstream := c.MakeVector(cost.Output().Len())
		upstream.AddScalar(c.MakeNumeric(1))
		cost.Propagate(upstream, grad)
		t.Optimizer.Step(grad)
	}

	return out.Output(), loss
}

func (t *Trainer) stopRequested() bool {
	if t.Stop == nil {
		return false
	}
	select {
	case <-t.Stop:
		return true
	default:
		return false
	}
}

func (t *Trainer) logger() *log.Logger {
	if t.Logger == nil {
		return log.Default()
	}
	return t.Logger
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(correct) / float64(total)
}
