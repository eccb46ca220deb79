package learning

import (
	"bytes"
	"encoding/gob"
	"github.com/ewalker544/libsvm-go"
	"github.com/hscells/ensemble/dataset"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"io/ioutil"
	"os"
	"sort"
)

// SVCParams are the hyperparameters of a support vector classifier.
type SVCParams struct {
	// Kernel is one of linear, rbf or poly.
	Kernel string  `mapstructure:"kernel"`
	C      float64 `mapstructure:"C"`
	// Gamma of zero uses one over the number of features.
	Gamma  float64 `mapstructure:"gamma"`
	Degree int     `mapstructure:"degree"`
	Coef0  float64 `mapstructure:"coef0"`
	Tol    float64 `mapstructure:"tol"`
	// CacheSize is the size of the kernel cache in megabytes.
	CacheSize int `mapstructure:"cache_size"`
	// Probability fits Platt scaling with libsvm's internal cross-validation. libsvm seeds that cross-validation from
	// the clock, so probabilities are only reproducible when it is off.
	Probability bool `mapstructure:"probability"`
}

func defaultSVCParams() SVCParams {
	return SVCParams{
		Kernel:    "rbf",
		C:         1,
		Degree:    3,
		Coef0:     1,
		Tol:       1e-3,
		CacheSize: 100,
	}
}

var kernelTypes = map[string]int{
	"linear": libSvm.LINEAR,
	"rbf":    libSvm.RBF,
	"poly":   libSvm.POLY,
}

// SVClassifier is a C-SVC trained with libsvm over standardised features. Without Platt scaling the pairwise
// decision values go through a sigmoid and are normalised across classes.
type SVClassifier struct {
	Params   SVCParams
	Seed     int64
	NClasses int
	Scaler   StandardScaler
	Gamma    float64
	// Labels are the classes seen in training, in libsvm's internal order.
	Labels []int
	// Dump is the trained libsvm model in its text format.
	Dump []byte

	model *libSvm.Model
}

// NewSVC creates an unfitted support vector classifier.
func NewSVC(p SVCParams, seed int64) *SVClassifier {
	return &SVClassifier{Params: p, Seed: seed}
}

func (s *SVClassifier) parameter() *libSvm.Parameter {
	param := libSvm.NewParameter()
	param.SvmType = libSvm.C_SVC
	param.KernelType = kernelTypes[s.Params.Kernel]
	param.C = s.Params.C
	param.Gamma = s.Gamma
	param.Degree = s.Params.Degree
	param.Coef0 = s.Params.Coef0
	param.Eps = s.Params.Tol
	param.CacheSize = s.Params.CacheSize
	param.Probability = s.Params.Probability
	param.QuietMode = true
	// Candidates are already fitted concurrently.
	param.NumCPU = 1
	return param
}

func (s *SVClassifier) Fit(X mat.Matrix, y []int, nClasses int) error {
	p := s.Params
	if _, ok := kernelTypes[p.Kernel]; !ok {
		return errors.Errorf("unknown kernel %q", p.Kernel)
	}
	if p.C <= 0 || p.Gamma < 0 || p.Tol <= 0 || p.Degree < 1 || p.CacheSize < 1 {
		return errors.Errorf("invalid svc parameters %+v", p)
	}
	n, d := X.Dims()
	if n == 0 || n != len(y) {
		return errors.Errorf("cannot fit %d rows with %d labels", n, len(y))
	}

	s.NClasses = nClasses
	s.Scaler.Fit(X)
	s.Gamma = p.Gamma
	if s.Gamma == 0 {
		s.Gamma = 1 / float64(d)
	}

	// libsvm orders its classes by first occurrence, so rows are written grouped by ascending class.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return y[order[a]] < y[order[b]]
	})
	rows := s.Scaler.Transform(X)
	scaled := mat.NewDense(n, d, nil)
	labels := make([]float64, n)
	s.Labels = nil
	for i, r := range order {
		scaled.SetRow(i, rows[r])
		labels[i] = float64(y[r])
		if len(s.Labels) == 0 || s.Labels[len(s.Labels)-1] != y[r] {
			s.Labels = append(s.Labels, y[r])
		}
	}
	s.Dump = nil
	s.model = nil
	if len(s.Labels) == 1 {
		return nil
	}

	problemFile, err := ioutil.TempFile("", "svc-problem")
	if err != nil {
		return err
	}
	defer os.Remove(problemFile.Name())
	err = dataset.WriteSVMLight(problemFile, scaled, labels)
	if cerr := problemFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "writing svc problem")
	}

	param := s.parameter()
	problem, err := libSvm.NewProblem(problemFile.Name(), param)
	if err != nil {
		return errors.Wrap(err, "reading svc problem")
	}
	model := libSvm.NewModel(param)
	if err := model.Train(problem); err != nil {
		return err
	}

	modelFile, err := ioutil.TempFile("", "svc-model")
	if err != nil {
		return err
	}
	modelFile.Close()
	defer os.Remove(modelFile.Name())
	if err := model.Dump(modelFile.Name()); err != nil {
		return err
	}
	s.Dump, err = ioutil.ReadFile(modelFile.Name())
	if err != nil {
		return err
	}
	// Predictions always come from the dumped model, so a loaded classifier predicts exactly as a fitted one.
	return s.restore()
}

func (s *SVClassifier) restore() error {
	f, err := ioutil.TempFile("", "svc-model")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	_, err = f.Write(s.Dump)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	model := libSvm.NewModel(libSvm.NewParameter())
	if err := model.ReadModel(f.Name()); err != nil {
		return errors.Wrap(err, "reading svc model")
	}
	s.model = model
	return nil
}

// features converts a scaled row into libsvm's one-based sparse representation.
func features(row []float64) map[int]float64 {
	x := make(map[int]float64)
	for j, v := range row {
		if v != 0 {
			x[j+1] = v
		}
	}
	return x
}

func (s *SVClassifier) PredictProba(X mat.Matrix) *mat.Dense {
	rows := s.Scaler.Transform(X)
	p := mat.NewDense(len(rows), s.NClasses, nil)
	for i, row := range rows {
		out := p.RawRowView(i)
		if s.model == nil {
			out[s.Labels[0]] = 1
			continue
		}
		x := features(row)
		if s.Params.Probability {
			_, estimates := s.model.PredictProbability(x)
			for k, v := range estimates {
				out[s.Labels[k]] = v
			}
			continue
		}
		// Pairwise decision values are ordered (0,1), (0,2) ... (1,2) ..., positive favouring the first class.
		_, decisions := s.model.PredictValues(x)
		var pair int
		for a := 0; a < len(s.Labels); a++ {
			for b := a + 1; b < len(s.Labels); b++ {
				q := sigmoid(decisions[pair])
				out[s.Labels[a]] += q
				out[s.Labels[b]] += 1 - q
				pair++
			}
		}
	}
	normalizeRows(p)
	return p
}

// svcState is the gob form of an SVClassifier.
type svcState struct {
	Params   SVCParams
	Seed     int64
	NClasses int
	Scaler   StandardScaler
	Gamma    float64
	Labels   []int
	Dump     []byte
}

func (s *SVClassifier) GobEncode() ([]byte, error) {
	var b bytes.Buffer
	err := gob.NewEncoder(&b).Encode(svcState{s.Params, s.Seed, s.NClasses, s.Scaler, s.Gamma, s.Labels, s.Dump})
	return b.Bytes(), err
}

func (s *SVClassifier) GobDecode(data []byte) error {
	var st svcState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}
	s.Params, s.Seed, s.NClasses, s.Scaler, s.Gamma, s.Labels, s.Dump = st.Params, st.Seed, st.NClasses, st.Scaler, st.Gamma, st.Labels, st.Dump
	s.model = nil
	if len(s.Dump) == 0 {
		return nil
	}
	return s.restore()
}
