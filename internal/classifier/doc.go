// Package classifier decides whether a screenshot shows the screen a pixel
// signature describes.
//
// A reference pixel passes when its coordinate lies inside the image and
// every colour channel differs from the sampled colour by at most the
// tolerance. An image matches a signature when all of its reference pixels
// pass, so an empty signature matches every image. Classify and Evaluate are pure;
// the Classifier type adds identifier lookup through an ImageSource and turns
// unreadable images into failed matches instead of errors.
package classifier
