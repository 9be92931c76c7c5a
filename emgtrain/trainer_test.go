package emgtrain

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/emgnet"
	"github.com/unixpickle/emgnet/emgdata"
	"github.com/unixpickle/emgnet/emgsgd"
)

// oracle ignores its input and replays fixed outputs.
type oracle struct {
	Outputs []anyvec.Vector
	next    int
}

func (o *oracle) Apply(in anydiff.Res, n int) anydiff.Res {
	out := o.Outputs[o.next%len(o.Outputs)]
	o.next++
	return anydiff.NewConst(out.Copy())
}

func testExamples(labels ...int) emgdata.Examples {
	c := anyvec64.DefaultCreator{}
	var res emgdata.Examples
	for _, label := range labels {
		input := make([]float64, 4)
		input[label] = 1
		input[label+2] = -1
		target := make([]float64, 2)
		target[label] = 1
		res = append(res, &emgdata.Example{
			Input:  c.MakeVectorData(c.MakeNumericList(input)),
			Target: c.MakeVectorData(c.MakeNumericList(target)),
			Label:  label,
		})
	}
	return res
}

func testTrainer(model emgnet.Layer, rate float64, maxEpochs int) (*Trainer, *bytes.Buffer) {
	opt := &emgsgd.Optimizer{Rater: emgsgd.ConstRater(rate)}
	t := NewTrainer(model, emgnet.MSE{}, opt, testExamples(0, 1, 1, 0),
		testExamples(0, 1), maxEpochs)
	var buf bytes.Buffer
	t.Logger = log.New(&buf, "", 0)
	return t, &buf
}

func TestTrainerEvalKeepsParams(t *testing.T) {
	net := emgnet.Net{emgnet.NewFC(anyvec64.DefaultCreator{}, 4, 2)}
	trainer, _ := testTrainer(net, 0.1, 1)
	before := emgnet.TakeSnapshot(trainer.Params)
	loss, _ := trainer.OneEpoch(Eval)
	if loss <= 0 {
		t.Fatalf("expected positive loss but got %f", loss)
	}
	if !before.Matches(trainer.Params) {
		t.Error("evaluation changed the parameters")
	}
}

func TestTrainerTrainChangesParams(t *testing.T) {
	net := emgnet.Net{emgnet.NewFC(anyvec64.DefaultCreator{}, 4, 2)}
	trainer, _ := testTrainer(net, 0.1, 1)
	before := emgnet.TakeSnapshot(trainer.Params)
	trainer.OneEpoch(Train)
	if before.Matches(trainer.Params) {
		t.Error("training left the parameters unchanged")
	}
}

func TestTrainerPerfectPredictions(t *testing.T) {
	examples := testExamples(0, 1)
	model := &oracle{Outputs: []anyvec.Vector{examples[0].Target, examples[1].Target}}
	trainer, _ := testTrainer(model, 0.1, 1)
	trainer.EvalSet = examples

	loss, correct := trainer.OneEpoch(Eval)
	if correct != len(examples) {
		t.Errorf("expected %d correct but got %d", len(examples), correct)
	}
	if loss != 0 {
		t.Errorf("expected zero loss but got %f", loss)
	}

	loss, acc := trainer.Test(false, 2)
	if loss != 0 || acc != 100 {
		t.Errorf("expected (0, 100) but got (%f, %f)", loss, acc)
	}
	if trainer.Best.Epoch != 2 || trainer.Best.Accuracy != 100 {
		t.Errorf("unexpected best record: %+v", trainer.Best)
	}
}

func TestTrainerWrongPredictions(t *testing.T) {
	examples := testExamples(0, 1)
	model := &oracle{Outputs: []anyvec.Vector{examples[1].Target, examples[0].Target}}
	trainer, _ := testTrainer(model, 0.1, 1)
	trainer.EvalSet = examples

	loss, correct := trainer.OneEpoch(Eval)
	if correct != 0 {
		t.Errorf("expected 0 correct but got %d", correct)
	}
	if math.Abs(loss-2) > 1e-8 {
		t.Errorf("expected loss 2 but got %f", loss)
	}
}

func TestTrainerTestRecordsBest(t *testing.T) {
	fc := emgnet.NewFC(anyvec64.DefaultCreator{}, 4, 2)
	trainer, _ := testTrainer(emgnet.Net{fc}, 0.1, 1)

	loss, _ := trainer.Test(false, 5)
	if trainer.Best.Epoch != 5 || trainer.Best.Loss != loss {
		t.Fatalf("unexpected best record: %+v", trainer.Best)
	}
	if !trainer.Best.Weights.Matches(trainer.Params) {
		t.Fatal("best weights differ from the evaluated weights")
	}

	fc.Biases.Vector.AddScalar(1.0)
	if trainer.Best.Weights.Matches(trainer.Params) {
		t.Fatal("best weights followed the live parameters")
	}

	trainer.Test(true, 1)
	if !trainer.Best.Weights.Matches(trainer.Params) {
		t.Error("Test(true) did not restore the best weights")
	}
	if trainer.Best.Epoch != 5 {
		t.Errorf("Test(true) changed the best epoch to %d", trainer.Best.Epoch)
	}
}

func TestTrainerEmptySplit(t *testing.T) {
	net := emgnet.Net{emgnet.NewFC(anyvec64.DefaultCreator{}, 4, 2)}
	trainer, _ := testTrainer(net, 0.1, 1)
	trainer.EvalSet = nil
	loss, acc := trainer.Test(true, 1)
	if loss != 0 || acc != 0 {
		t.Errorf("expected (0, 0) but got (%f, %f)", loss, acc)
	}
}

func TestTrainerEarlyStop(t *testing.T) {
	examples := testExamples(0, 1)
	model := &oracle{Outputs: []anyvec.Vector{examples[1].Target}}
	trainer, _ := testTrainer(model, 0.1, 10)
	summary := trainer.Train(false)
	if !summary.EarlyStop {
		t.Fatal("expected an early stop")
	}
	if summary.Epochs > 1+DefaultStopPatience {
		t.Errorf("ran %d epochs", summary.Epochs)
	}
	if trainer.Best.Epoch != 1 {
		t.Errorf("expected best epoch 1 but got %d", trainer.Best.Epoch)
	}
}

func TestTrainerSchedulerAdvance(t *testing.T) {
	net := emgnet.Net{emgnet.NewFC(anyvec64.DefaultCreator{}, 4, 2)}
	trainer, _ := testTrainer(net, 0.01, 3)
	trainer.Optimizer.Rater = &emgsgd.StepRater{Initial: 0.01, StepSize: 2, Gamma: 0.1}
	trainer.Scheduler = trainer.Optimizer
	trainer.Stopper = &EarlyStopper{}

	summary := trainer.Train(true)
	if summary.Epochs != 3 || summary.EarlyStop {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if trainer.Optimizer.Epoch != 3 {
		t.Errorf("expected schedule epoch 3 but got %d", trainer.Optimizer.Epoch)
	}
	if rate := trainer.Optimizer.Rate(); math.Abs(rate-0.001) > 1e-12 {
		t.Errorf("expected rate 0.001 but got %f", rate)
	}
}

func TestTrainerLearns(t *testing.T) {
	net := emgnet.Net{emgnet.NewFC(anyvec64.DefaultCreator{}, 4, 2)}
	trainer, buf := testTrainer(net, 0.1, 50)
	trainer.Stopper = &EarlyStopper{}

	initial, _ := trainer.OneEpoch(Eval)
	trainer.Train(true)
	final, correct := trainer.OneEpoch(Eval)
	if final >= initial {
		t.Errorf("loss went from %f to %f", initial, final)
	}
	if correct != len(trainer.EvalSet) {
		t.Errorf("expected %d correct but got %d", len(trainer.EvalSet), correct)
	}
	if trainer.Best.Epoch == 0 {
		t.Error("no epoch beat the initial weights")
	}

	out := buf.String()
	for _, line := range []string{"Epoch: 50/50", "Phase: Train", "Phase: Validation",
		"Best epoch was", "Training completed in"} {
		if !strings.Contains(out, line) {
			t.Errorf("log is missing %q", line)
		}
	}
}

func TestTrainerStop(t *testing.T) {
	net := emgnet.Net{emgnet.NewFC(anyvec64.DefaultCreator{}, 4, 2)}
	trainer, buf := testTrainer(net, 0.1, 10)
	stop := make(chan struct{})
	close(stop)
	trainer.Stop = stop

	before := emgnet.TakeSnapshot(trainer.Params)
	summary := trainer.Train(true)
	if summary.Epochs != 0 {
		t.Errorf("ran %d epochs", summary.Epochs)
	}
	if !before.Matches(trainer.Params) {
		t.Error("parameters changed")
	}
	if !strings.Contains(buf.String(), "Stop requested") {
		t.Error("stop was not logged")
	}
}

func TestTrainerDropoutModes(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	drop := &emgnet.Dropout{KeepProb: 0.5}
	net := emgnet.Net{emgnet.NewFC(c, 4, 2), drop}
	trainer, _ := testTrainer(net, 0.1, 1)

	trainer.OneEpoch(Train)
	if !drop.Training {
		t.Error("train phase left dropout disabled")
	}
	trainer.OneEpoch(Eval)
	if drop.Training {
		t.Error("eval phase left dropout enabled")
	}
}
