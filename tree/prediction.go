package tree

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrUnmatchedPath is the error returned by the Predict method of a tree when
the sample does not define a value for the feature of a decision node along
its path, or defines a value none of the node's children was built for. The
tree never guesses a label in that case.
*/
const ErrUnmatchedPath = PredictionError("no path in the tree matches the sample")

/*
ErrEmptyTree is returned when predicting with a tree that has no root.
*/
const ErrEmptyTree = PredictionError("tree has no root node")

func (pe PredictionError) Error() string {
	return string(pe)
}
